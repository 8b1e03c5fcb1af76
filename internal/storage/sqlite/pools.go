package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitpool/internal/models"
	"github.com/mmynk/splitpool/internal/storage"
)

// CreatePool persists a new pool and its initial memberships.
func (s *SQLiteStore) CreatePool(ctx context.Context, pool *models.Pool) error {
	if len(pool.Memberships) == 0 {
		return fmt.Errorf("pool must have at least one member")
	}
	// Generate ID if not set
	if pool.ID == "" {
		pool.ID = uuid.New().String()
	}
	if pool.CreatedAt == 0 {
		pool.CreatedAt = time.Now().Unix()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO pools (id, name, description, created_at) VALUES (?, ?, ?, ?)",
			pool.ID, pool.Name, pool.Description, pool.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert pool: %w", err)
		}

		for i := range pool.Memberships {
			m := &pool.Memberships[i]
			m.PoolID = pool.ID
			if err := insertMembership(ctx, tx, m); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertMembership(ctx context.Context, q querier, m *models.PoolMembership) error {
	if m.JoinedAt == 0 {
		m.JoinedAt = time.Now().Unix()
	}
	_, err := q.ExecContext(ctx,
		`INSERT INTO pool_memberships (pool_id, member_id, role, default_split_percentage, joined_at)
		 VALUES (?, ?, ?, ?, ?)`,
		m.PoolID, m.MemberID, string(m.Role), m.DefaultSplitPercentage.String(), m.JoinedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("member %s in pool %s: %w", m.MemberID, m.PoolID, storage.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to insert membership: %w", err)
	}
	return nil
}

// GetPool retrieves a pool by ID, including its memberships.
func (s *SQLiteStore) GetPool(ctx context.Context, poolID string) (*models.Pool, error) {
	pool := &models.Pool{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, description, created_at FROM pools WHERE id = ?",
		poolID,
	).Scan(&pool.ID, &pool.Name, &pool.Description, &pool.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("pool", poolID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pool: %w", err)
	}

	pool.Memberships, err = listMemberships(ctx, s.db, poolID)
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// listMemberships returns a pool's memberships in join order.
func listMemberships(ctx context.Context, q querier, poolID string) ([]models.PoolMembership, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT pool_id, member_id, role, default_split_percentage, joined_at
		 FROM pool_memberships WHERE pool_id = ? ORDER BY joined_at, rowid`,
		poolID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get memberships: %w", err)
	}
	defer rows.Close()

	var memberships []models.PoolMembership
	for rows.Next() {
		var m models.PoolMembership
		var role string
		if err := rows.Scan(&m.PoolID, &m.MemberID, &role, &m.DefaultSplitPercentage, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		m.Role = models.Role(role)
		memberships = append(memberships, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate memberships: %w", err)
	}
	return memberships, nil
}

// ListPoolsForMember retrieves every pool the member belongs to, newest first.
func (s *SQLiteStore) ListPoolsForMember(ctx context.Context, memberID string) ([]*models.Pool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.name, p.description, p.created_at
		 FROM pools p
		 JOIN pool_memberships m ON m.pool_id = p.id
		 WHERE m.member_id = ?
		 ORDER BY p.created_at DESC, p.rowid DESC`,
		memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pools: %w", err)
	}

	var pools []*models.Pool
	for rows.Next() {
		pool := &models.Pool{}
		if err := rows.Scan(&pool.ID, &pool.Name, &pool.Description, &pool.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan pool: %w", err)
		}
		pools = append(pools, pool)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pools: %w", err)
	}

	// Memberships are loaded after the pool rows are closed: the store holds a single connection.
	for _, pool := range pools {
		if pool.Memberships, err = listMemberships(ctx, s.db, pool.ID); err != nil {
			return nil, err
		}
	}
	return pools, nil
}

// AddPoolMember adds a membership to an existing pool.
func (s *SQLiteStore) AddPoolMember(ctx context.Context, membership *models.PoolMembership) error {
	return insertMembership(ctx, s.db, membership)
}

// RemovePoolMember deletes a membership. check sees the pool's memberships and
// unsettled lines as of the same transaction and can veto the delete.
func (s *SQLiteStore) RemovePoolMember(ctx context.Context, poolID, memberID string,
	check func([]models.PoolMembership, []models.LedgerLine) error) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if check != nil {
			memberships, err := listMemberships(ctx, tx, poolID)
			if err != nil {
				return err
			}
			lines, err := listUnsettledLines(ctx, tx, poolID)
			if err != nil {
				return err
			}
			if err := check(memberships, lines); err != nil {
				return err
			}
		}

		result, err := tx.ExecContext(ctx,
			"DELETE FROM pool_memberships WHERE pool_id = ? AND member_id = ?",
			poolID, memberID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete membership: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return notFound("membership", memberID)
		}
		return nil
	})
}

// UpdateDefaultSplits writes new default split percentages and validates the
// resulting pool-wide state before committing.
func (s *SQLiteStore) UpdateDefaultSplits(ctx context.Context, poolID string, splits map[string]decimal.Decimal,
	check func([]models.PoolMembership) error) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for memberID, pct := range splits {
			result, err := tx.ExecContext(ctx,
				"UPDATE pool_memberships SET default_split_percentage = ? WHERE pool_id = ? AND member_id = ?",
				pct.String(), poolID, memberID,
			)
			if err != nil {
				return fmt.Errorf("failed to update default split: %w", err)
			}
			if n, _ := result.RowsAffected(); n == 0 {
				return notFound("membership", memberID)
			}
		}

		memberships, err := listMemberships(ctx, tx, poolID)
		if err != nil {
			return err
		}
		if check != nil {
			return check(memberships)
		}
		return nil
	})
}
