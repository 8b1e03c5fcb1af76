package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitpool/internal/models"
)

// SettlePool marks every unsettled line item and expense of the pool as settled
// and records a settlement row, all in one transaction.
func (s *SQLiteStore) SettlePool(ctx context.Context, settlement *models.Settlement) error {
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		lines, err := listUnsettledLines(ctx, tx, settlement.PoolID)
		if err != nil {
			return err
		}
		settlement.LineItemCount = len(lines)
		settlement.TotalAmount = decimal.Zero
		for _, line := range lines {
			settlement.TotalAmount = settlement.TotalAmount.Add(line.Amount)
		}
		if len(lines) == 0 {
			// Already settled or nothing recorded yet: no row, no id.
			settlement.ID = ""
			return nil
		}
		if settlement.ID == "" {
			settlement.ID = uuid.New().String()
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE expense_line_items SET is_settled = 1
			 WHERE is_settled = 0 AND expense_id IN (SELECT id FROM expenses WHERE pool_id = ?)`,
			settlement.PoolID,
		)
		if err != nil {
			return fmt.Errorf("failed to settle line items: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE expenses SET is_settled = 1, settled_at = ? WHERE pool_id = ? AND is_settled = 0",
			settlement.CreatedAt, settlement.PoolID,
		)
		if err != nil {
			return fmt.Errorf("failed to settle expenses: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO settlements (id, pool_id, settled_by, line_item_count, total_amount, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			settlement.ID, settlement.PoolID, settlement.SettledBy, settlement.LineItemCount,
			settlement.TotalAmount.StringFixed(2), settlement.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert settlement: %w", err)
		}
		return nil
	})
}

// ListSettlements retrieves all settlements for a pool, newest first.
func (s *SQLiteStore) ListSettlements(ctx context.Context, poolID string) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, pool_id, settled_by, line_item_count, total_amount, created_at
		 FROM settlements WHERE pool_id = ? ORDER BY created_at DESC, rowid DESC`,
		poolID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements by pool: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement := &models.Settlement{}
		if err := rows.Scan(&settlement.ID, &settlement.PoolID, &settlement.SettledBy,
			&settlement.LineItemCount, &settlement.TotalAmount, &settlement.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}
