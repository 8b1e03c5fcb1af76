package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitpool/internal/models"
	"github.com/mmynk/splitpool/internal/storage"
)

const expenseColumns = `e.id, e.pool_id, e.payer_id, e.name, e.amount, e.description, e.category, e.notes,
	e.split_method, e.is_settled, e.created_at, e.updated_at, e.settled_at`

func scanExpense(row rowScanner, extra ...any) (*models.Expense, error) {
	expense := &models.Expense{}
	var method string
	dest := []any{
		&expense.ID,
		&expense.PoolID,
		&expense.PayerID,
		&expense.Name,
		&expense.Amount,
		&expense.Description,
		&expense.Category,
		&expense.Notes,
		&method,
		&expense.IsSettled,
		&expense.CreatedAt,
		&expense.UpdatedAt,
		&expense.SettledAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	expense.SplitMethod = models.SplitMethod(method)
	return expense, nil
}

// CreateExpense persists a new expense and its line items in one transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	// Generate IDs if not set
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now
	}
	expense.UpdatedAt = expense.CreatedAt

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireMembers(ctx, tx, expense); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (id, pool_id, payer_id, name, amount, description, category, notes,
			 split_method, is_settled, created_at, updated_at, settled_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, 0)`,
			expense.ID, expense.PoolID, expense.PayerID, expense.Name, expense.Amount.StringFixed(2),
			expense.Description, expense.Category, expense.Notes, string(expense.SplitMethod),
			expense.CreatedAt, expense.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}
		return insertLineItems(ctx, tx, expense)
	})
}

// requireMembers checks, within tx, that the payer and every debtor still
// belong to the expense's pool.
func requireMembers(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	ids := []any{expense.PoolID, expense.PayerID}
	for _, li := range expense.LineItems {
		ids = append(ids, li.DebtorID)
	}
	rows, err := tx.QueryContext(ctx,
		`SELECT member_id FROM pool_memberships WHERE pool_id = ? AND member_id IN (`+placeholders(len(ids)-1)+`)`,
		ids...,
	)
	if err != nil {
		return fmt.Errorf("failed to check memberships: %w", err)
	}
	present := make(map[string]bool, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan membership: %w", err)
		}
		present[id] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate memberships: %w", err)
	}

	for _, id := range ids[1:] {
		if !present[id.(string)] {
			return fmt.Errorf("member %s in pool %s: %w", id, expense.PoolID, storage.ErrNotMember)
		}
	}
	return nil
}

func insertLineItems(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	for i := range expense.LineItems {
		li := &expense.LineItems[i]
		if li.ID == "" {
			li.ID = uuid.New().String()
		}
		li.ExpenseID = expense.ID
		li.IsSettled = false

		_, err := tx.ExecContext(ctx,
			`INSERT INTO expense_line_items (id, expense_id, debtor_id, amount, is_settled, position)
			 VALUES (?, ?, ?, ?, 0, ?)`,
			li.ID, expense.ID, li.DebtorID, li.Amount.StringFixed(2), i,
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("debtor %s on expense %s: %w", li.DebtorID, expense.ID, storage.ErrDuplicate)
		}
		if err != nil {
			return fmt.Errorf("failed to insert line item: %w", err)
		}
	}
	return nil
}

// GetExpense retrieves an expense by ID, including its line items in allocation order.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses e WHERE e.id = ?`, expenseID)
	expense, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("expense", expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, expense_id, debtor_id, amount, is_settled
		 FROM expense_line_items WHERE expense_id = ? ORDER BY position`,
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get line items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var li models.ExpenseLineItem
		if err := rows.Scan(&li.ID, &li.ExpenseID, &li.DebtorID, &li.Amount, &li.IsSettled); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		expense.LineItems = append(expense.LineItems, li)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate line items: %w", err)
	}

	return expense, nil
}

// lockUnsettled checks that the expense exists and is not settled, within tx.
func lockUnsettled(ctx context.Context, tx *sql.Tx, expenseID string) error {
	var settled bool
	err := tx.QueryRowContext(ctx, "SELECT is_settled FROM expenses WHERE id = ?", expenseID).Scan(&settled)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("expense", expenseID)
	}
	if err != nil {
		return fmt.Errorf("failed to check expense: %w", err)
	}
	if settled {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrSettled)
	}
	return nil
}

// UpdateExpense replaces an unsettled expense's fields and line items.
// The pool and creation time never change.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	expense.UpdatedAt = time.Now().Unix()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := lockUnsettled(ctx, tx, expense.ID); err != nil {
			return err
		}
		if err := requireMembers(ctx, tx, expense); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			`UPDATE expenses SET payer_id = ?, name = ?, amount = ?, description = ?, category = ?,
			 notes = ?, split_method = ?, updated_at = ?
			 WHERE id = ?`,
			expense.PayerID, expense.Name, expense.Amount.StringFixed(2), expense.Description,
			expense.Category, expense.Notes, string(expense.SplitMethod), expense.UpdatedAt, expense.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update expense: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM expense_line_items WHERE expense_id = ?", expense.ID); err != nil {
			return fmt.Errorf("failed to delete old line items: %w", err)
		}
		for i := range expense.LineItems {
			expense.LineItems[i].ID = ""
		}
		return insertLineItems(ctx, tx, expense)
	})
}

// DeleteExpense removes an unsettled expense; its line items go with it.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := lockUnsettled(ctx, tx, expenseID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID); err != nil {
			return fmt.Errorf("failed to delete expense: %w", err)
		}
		return nil
	})
}

// ListExpenses retrieves a pool's expenses newest first, each carrying the
// filter member's own line item amount (zero when they are not a debtor).
func (s *SQLiteStore) ListExpenses(ctx context.Context, filter storage.ExpenseFilter) ([]*models.ExpenseSummary, error) {
	var (
		where = []string{"e.pool_id = ?"}
		args  = []any{filter.MemberID, filter.PoolID}
	)
	if filter.Category != "" {
		where = append(where, "e.category = ?")
		args = append(args, filter.Category)
	}
	if filter.PayerID != "" {
		where = append(where, "e.payer_id = ?")
		args = append(args, filter.PayerID)
	}
	if filter.From > 0 {
		where = append(where, "e.created_at >= ?")
		args = append(args, filter.From)
	}
	if filter.To > 0 {
		where = append(where, "e.created_at <= ?")
		args = append(args, filter.To)
	}
	if filter.IsSettled != nil {
		where = append(where, "e.is_settled = ?")
		args = append(args, *filter.IsSettled)
	}

	query := `SELECT ` + expenseColumns + `, COALESCE(li.amount, '0')
		FROM expenses e
		LEFT JOIN expense_line_items li ON li.expense_id = e.id AND li.debtor_id = ?
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY e.created_at DESC, e.rowid DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var summaries []*models.ExpenseSummary
	for rows.Next() {
		var share decimal.Decimal
		expense, err := scanExpense(rows, &share)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		summaries = append(summaries, &models.ExpenseSummary{Expense: *expense, MemberShare: share})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	return summaries, nil
}

// ListUnsettledLines retrieves every unsettled line item in the pool with its payer.
func (s *SQLiteStore) ListUnsettledLines(ctx context.Context, poolID string) ([]models.LedgerLine, error) {
	return listUnsettledLines(ctx, s.db, poolID)
}

func listUnsettledLines(ctx context.Context, q querier, poolID string) ([]models.LedgerLine, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT li.expense_id, e.payer_id, li.debtor_id, li.amount
		 FROM expense_line_items li
		 JOIN expenses e ON e.id = li.expense_id
		 WHERE e.pool_id = ? AND li.is_settled = 0
		 ORDER BY e.created_at, e.rowid, li.position`,
		poolID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list unsettled line items: %w", err)
	}
	defer rows.Close()

	var lines []models.LedgerLine
	for rows.Next() {
		var line models.LedgerLine
		if err := rows.Scan(&line.ExpenseID, &line.PayerID, &line.DebtorID, &line.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate line items: %w", err)
	}
	return lines, nil
}
