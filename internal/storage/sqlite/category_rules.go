package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitpool/internal/models"
)

// CreateCategoryRule appends a rule to the end of the member's rule list.
func (s *SQLiteStore) CreateCategoryRule(ctx context.Context, rule *models.CategoryRule) error {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	if rule.CreatedAt == 0 {
		rule.CreatedAt = time.Now().Unix()
	}

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO expense_category_rules (id, member_id, pattern, category, position, created_at)
		 VALUES (?, ?, ?, ?,
		   (SELECT COALESCE(MAX(position), -1) + 1 FROM expense_category_rules WHERE member_id = ?), ?)
		 RETURNING position`,
		rule.ID, rule.MemberID, rule.Pattern, rule.Category, rule.MemberID, rule.CreatedAt,
	).Scan(&rule.Position)
	if err != nil {
		return fmt.Errorf("failed to insert category rule: %w", err)
	}
	return nil
}

// ListCategoryRules returns a member's rules in match order.
func (s *SQLiteStore) ListCategoryRules(ctx context.Context, memberID string) ([]models.CategoryRule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, member_id, pattern, category, position, created_at
		 FROM expense_category_rules WHERE member_id = ? ORDER BY position`,
		memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list category rules: %w", err)
	}
	defer rows.Close()

	var rules []models.CategoryRule
	for rows.Next() {
		var r models.CategoryRule
		if err := rows.Scan(&r.ID, &r.MemberID, &r.Pattern, &r.Category, &r.Position, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category rule: %w", err)
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category rules: %w", err)
	}
	return rules, nil
}

// DeleteCategoryRule removes one of the member's rules.
func (s *SQLiteStore) DeleteCategoryRule(ctx context.Context, memberID, ruleID string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM expense_category_rules WHERE id = ? AND member_id = ?",
		ruleID, memberID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete category rule: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return notFound("category rule", ruleID)
	}
	return nil
}
