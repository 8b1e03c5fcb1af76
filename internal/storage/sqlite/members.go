package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/splitpool/internal/models"
	"github.com/mmynk/splitpool/internal/storage"
)

const memberColumns = `id, email, first_name, last_name, password_hash, bio, payment_handle, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (*models.Member, error) {
	member := &models.Member{}
	err := row.Scan(
		&member.ID,
		&member.Email,
		&member.FirstName,
		&member.LastName,
		&member.PasswordHash,
		&member.Bio,
		&member.PaymentHandle,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	return member, err
}

// CreateMember inserts a new member into the database.
func (s *SQLiteStore) CreateMember(ctx context.Context, member *models.Member) error {
	query := `INSERT INTO members (` + memberColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		member.ID,
		member.Email,
		member.FirstName,
		member.LastName,
		member.PasswordHash,
		member.Bio,
		member.PaymentHandle,
		member.CreatedAt,
		member.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("member %s: %w", member.Email, storage.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}

	return nil
}

// GetMember retrieves a member by ID.
func (s *SQLiteStore) GetMember(ctx context.Context, memberID string) (*models.Member, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM members WHERE id = ?`, memberID)
	member, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("member", memberID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member by ID: %w", err)
	}
	return member, nil
}

// GetMemberByEmail retrieves a member by their email address.
func (s *SQLiteStore) GetMemberByEmail(ctx context.Context, email string) (*models.Member, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM members WHERE email = ?`, email)
	member, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("member", email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member by email: %w", err)
	}
	return member, nil
}

// GetMembersByIDs retrieves multiple members by their IDs.
// Returns a map of member ID to Member.
// Members that don't exist are omitted from the result.
func (s *SQLiteStore) GetMembersByIDs(ctx context.Context, ids []string) (map[string]*models.Member, error) {
	members := make(map[string]*models.Member, len(ids))
	if len(ids) == 0 {
		return members, nil
	}

	query := `SELECT ` + memberColumns + ` FROM members WHERE id IN (` + placeholders(len(ids)) + `)`
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get members by IDs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members[member.ID] = member
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}

// UpdateMemberProfile updates the mutable profile fields of a member.
// ID and email are identity and never change here.
func (s *SQLiteStore) UpdateMemberProfile(ctx context.Context, member *models.Member) error {
	member.UpdatedAt = time.Now().Unix()
	result, err := s.db.ExecContext(ctx,
		`UPDATE members SET first_name = ?, last_name = ?, bio = ?, payment_handle = ?, updated_at = ?
		 WHERE id = ?`,
		member.FirstName, member.LastName, member.Bio, member.PaymentHandle, member.UpdatedAt, member.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return notFound("member", member.ID)
	}
	return nil
}
