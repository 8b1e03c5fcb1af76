// Package ledger is the expense ledger of splitpool: it validates requests,
// runs the split allocator, persists expenses atomically and derives balances
// from unsettled line items.
//
// Every operation takes the id of the already-authenticated member making the
// request as a plain argument. A member that is not part of a pool gets the same
// NotFoundError as for a pool that does not exist.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitpool/internal/activity"
	"github.com/mmynk/splitpool/internal/calculator"
	"github.com/mmynk/splitpool/internal/models"
	"github.com/mmynk/splitpool/internal/storage"
)

const (
	DefaultListLimit     = 20
	MaxListLimit         = 100
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

// Metrics receives ledger counters. Implemented by internal/metrics.
type Metrics interface {
	ExpenseCreated(method models.SplitMethod)
	SplitRejected(method models.SplitMethod)
	PoolSettled()
}

type nopMetrics struct{}

func (nopMetrics) ExpenseCreated(models.SplitMethod) {}
func (nopMetrics) SplitRejected(models.SplitMethod)  {}
func (nopMetrics) PoolSettled()                      {}

// Ledger implements the expense, pool and balance operations on top of a Store.
type Ledger struct {
	store   storage.Store
	events  activity.Recorder
	metrics Metrics

	defaultLimit int
	maxLimit     int
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithRecorder sends activity events to r.
func WithRecorder(r activity.Recorder) Option {
	return func(l *Ledger) {
		l.events = r
	}
}

// WithMetrics reports counters to m.
func WithMetrics(m Metrics) Option {
	return func(l *Ledger) {
		l.metrics = m
	}
}

// WithListLimits sets the default and maximum page size of ListRecentExpenses.
func WithListLimits(defaultLimit, maxLimit int) Option {
	return func(l *Ledger) {
		l.defaultLimit = defaultLimit
		l.maxLimit = maxLimit
	}
}

// New creates a Ledger over store.
func New(store storage.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:        store,
		events:       activity.Discard,
		metrics:      nopMetrics{},
		defaultLimit: DefaultListLimit,
		maxLimit:     MaxListLimit,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SplitSpec says how an expense is divided.
// An empty Method means SplitEqual. For SplitEqual and SplitDefault an empty
// Shares list means every member of the pool.
type SplitSpec struct {
	Method models.SplitMethod
	Shares []calculator.Share
}

// ExpenseInput carries the caller-supplied fields of an expense.
type ExpenseInput struct {
	PoolID      string
	PayerID     string
	Name        string
	Amount      decimal.Decimal
	Category    string
	Description string
	Notes       string
	Split       SplitSpec
}

// ExpenseQuery filters ListRecentExpenses. From and To are Unix seconds.
type ExpenseQuery struct {
	PoolID    string
	Category  string
	PayerID   string
	From      int64
	To        int64
	IsSettled *bool
	Limit     int
}

// poolFor returns the pool if memberID belongs to it.
func (l *Ledger) poolFor(ctx context.Context, poolID, memberID string) (*models.Pool, error) {
	if poolID == "" {
		return nil, invalid("pool_id", "must not be empty")
	}
	pool, err := l.store.GetPool(ctx, poolID)
	if err != nil {
		return nil, fromStore(err, "pool", poolID)
	}
	if pool.Membership(memberID) == nil {
		return nil, &NotFoundError{Kind: "pool", ID: poolID}
	}
	return pool, nil
}

// allocate resolves the split against the pool and runs the allocator.
func (l *Ledger) allocate(pool *models.Pool, amount decimal.Decimal, split SplitSpec) (models.SplitMethod, []models.ExpenseLineItem, error) {
	method := split.Method
	if method == "" {
		method = models.SplitEqual
	}
	if !method.Valid() {
		return method, nil, invalid("split_method", "unknown method %q", method)
	}

	shares := split.Shares
	if len(shares) == 0 && (method == models.SplitEqual || method == models.SplitDefault) {
		for _, m := range pool.Memberships {
			if method == models.SplitDefault && m.DefaultSplitPercentage.IsZero() {
				continue
			}
			shares = append(shares, calculator.Share{MemberID: m.MemberID})
		}
	}

	resolved := make([]calculator.Share, len(shares))
	for i, s := range shares {
		membership := pool.Membership(s.MemberID)
		if membership == nil {
			return method, nil, &NotFoundError{Kind: "pool member", ID: s.MemberID}
		}
		resolved[i] = s
		if method == models.SplitDefault {
			resolved[i].Weight = decimal.NewNullDecimal(membership.DefaultSplitPercentage)
		}
	}

	items, err := calculator.Allocate(amount, method, resolved)
	if err != nil {
		var mismatch *calculator.MismatchError
		if errors.As(err, &mismatch) {
			l.metrics.SplitRejected(method)
			slog.Info("Split rejected",
				"pool_id", pool.ID,
				"method", method,
				"expected", mismatch.Expected.StringFixed(2),
				"computed", mismatch.Computed.StringFixed(2),
			)
		}
		return method, nil, &ValidationError{Field: "split", Err: err}
	}
	if sum := calculator.SumLineItems(items); !sum.Equal(calculator.RoundMoney(amount)) {
		return method, nil, fmt.Errorf("allocation of %s for pool %s sums to %s", amount.StringFixed(2), pool.ID, sum.StringFixed(2))
	}

	lineItems := make([]models.ExpenseLineItem, len(items))
	for i, it := range items {
		lineItems[i] = models.ExpenseLineItem{DebtorID: it.MemberID, Amount: it.Amount}
	}
	return method, lineItems, nil
}

func validateExpenseInput(in *ExpenseInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalid("name", "must not be empty")
	}
	in.Amount = calculator.RoundMoney(in.Amount)
	if !in.Amount.IsPositive() {
		return invalid("amount", "must be positive, got %s", in.Amount.StringFixed(2))
	}
	if in.PayerID == "" {
		return invalid("payer_id", "must not be empty")
	}
	return nil
}

// PreviewSplit runs the allocator for the pool without persisting anything.
func (l *Ledger) PreviewSplit(ctx context.Context, memberID, poolID string, amount decimal.Decimal, split SplitSpec) ([]models.ExpenseLineItem, error) {
	pool, err := l.poolFor(ctx, poolID, memberID)
	if err != nil {
		return nil, err
	}
	_, items, err := l.allocate(pool, amount, split)
	return items, err
}

// CreateExpense validates the input, allocates line items and stores the
// expense with its line items as one unit.
func (l *Ledger) CreateExpense(ctx context.Context, memberID string, in ExpenseInput) (*models.Expense, error) {
	if err := validateExpenseInput(&in); err != nil {
		return nil, err
	}
	pool, err := l.poolFor(ctx, in.PoolID, memberID)
	if err != nil {
		return nil, err
	}
	if pool.Membership(in.PayerID) == nil {
		return nil, &NotFoundError{Kind: "pool member", ID: in.PayerID}
	}

	method, items, err := l.allocate(pool, in.Amount, in.Split)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		PoolID:      pool.ID,
		PayerID:     in.PayerID,
		Name:        in.Name,
		Amount:      in.Amount,
		Description: in.Description,
		Category:    in.Category,
		Notes:       in.Notes,
		SplitMethod: method,
		LineItems:   items,
	}
	if err := l.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("Failed to create expense", "pool_id", pool.ID, "error", err)
		return nil, fromStore(err, "expense", expense.ID)
	}

	l.metrics.ExpenseCreated(method)
	l.events.Record(activity.NewEvent(activity.ExpenseCreated,
		activity.WithPool(pool.ID),
		activity.WithActor(memberID),
		activity.WithData("expense_id", expense.ID),
		activity.WithData("name", expense.Name),
		activity.WithData("amount", expense.Amount.StringFixed(2)),
	))
	slog.Info("Expense created",
		"expense_id", expense.ID,
		"pool_id", pool.ID,
		"method", method,
		"amount", expense.Amount.StringFixed(2),
		"line_items", len(items),
	)
	return expense, nil
}

// expenseFor returns the expense if memberID belongs to its pool.
func (l *Ledger) expenseFor(ctx context.Context, expenseID, memberID string) (*models.Expense, *models.Pool, error) {
	expense, err := l.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, nil, fromStore(err, "expense", expenseID)
	}
	pool, err := l.store.GetPool(ctx, expense.PoolID)
	if err != nil {
		return nil, nil, fromStore(err, "pool", expense.PoolID)
	}
	if pool.Membership(memberID) == nil {
		return nil, nil, &NotFoundError{Kind: "expense", ID: expenseID}
	}
	return expense, pool, nil
}

// GetExpense returns an expense with all of its line items.
func (l *Ledger) GetExpense(ctx context.Context, memberID, expenseID string) (*models.Expense, error) {
	expense, _, err := l.expenseFor(ctx, expenseID, memberID)
	return expense, err
}

// UpdateExpense replaces an unsettled expense's fields and recomputes its
// line items. The expense keeps its id, pool and creation time. A SplitDefault
// split reads the pool's current default percentages.
func (l *Ledger) UpdateExpense(ctx context.Context, memberID, expenseID string, in ExpenseInput) (*models.Expense, error) {
	if err := validateExpenseInput(&in); err != nil {
		return nil, err
	}
	existing, pool, err := l.expenseFor(ctx, expenseID, memberID)
	if err != nil {
		return nil, err
	}
	if existing.IsSettled {
		return nil, conflict("expense %s is settled and cannot be changed", expenseID)
	}
	if in.PoolID != "" && in.PoolID != existing.PoolID {
		return nil, invalid("pool_id", "an expense cannot move to another pool")
	}
	if pool.Membership(in.PayerID) == nil {
		return nil, &NotFoundError{Kind: "pool member", ID: in.PayerID}
	}

	method, items, err := l.allocate(pool, in.Amount, in.Split)
	if err != nil {
		return nil, err
	}

	existing.PayerID = in.PayerID
	existing.Name = in.Name
	existing.Amount = in.Amount
	existing.Description = in.Description
	existing.Category = in.Category
	existing.Notes = in.Notes
	existing.SplitMethod = method
	existing.LineItems = items
	if err := l.store.UpdateExpense(ctx, existing); err != nil {
		if errors.Is(err, storage.ErrSettled) {
			return nil, conflict("expense %s is settled and cannot be changed", expenseID)
		}
		slog.Error("Failed to update expense", "expense_id", expenseID, "error", err)
		return nil, fromStore(err, "expense", expenseID)
	}

	l.events.Record(activity.NewEvent(activity.ExpenseUpdated,
		activity.WithPool(pool.ID),
		activity.WithActor(memberID),
		activity.WithData("expense_id", existing.ID),
		activity.WithData("name", existing.Name),
		activity.WithData("amount", existing.Amount.StringFixed(2)),
	))
	slog.Info("Expense updated", "expense_id", existing.ID, "pool_id", pool.ID, "method", method)
	return existing, nil
}

// DeleteExpense removes an unsettled expense and its line items.
func (l *Ledger) DeleteExpense(ctx context.Context, memberID, expenseID string) error {
	existing, _, err := l.expenseFor(ctx, expenseID, memberID)
	if err != nil {
		return err
	}
	if err := l.store.DeleteExpense(ctx, expenseID); err != nil {
		if errors.Is(err, storage.ErrSettled) {
			return conflict("expense %s is settled and cannot be deleted", expenseID)
		}
		return fromStore(err, "expense", expenseID)
	}

	l.events.Record(activity.NewEvent(activity.ExpenseDeleted,
		activity.WithPool(existing.PoolID),
		activity.WithActor(memberID),
		activity.WithData("expense_id", existing.ID),
		activity.WithData("name", existing.Name),
		activity.WithData("amount", existing.Amount.StringFixed(2)),
	))
	slog.Info("Expense deleted", "expense_id", expenseID, "pool_id", existing.PoolID)
	return nil
}

// ListRecentExpenses returns the pool's expenses newest first, each with the
// requesting member's own share.
func (l *Ledger) ListRecentExpenses(ctx context.Context, memberID string, q ExpenseQuery) ([]*models.ExpenseSummary, error) {
	if _, err := l.poolFor(ctx, q.PoolID, memberID); err != nil {
		return nil, err
	}
	switch {
	case q.Limit < 0:
		return nil, invalid("limit", "must not be negative")
	case q.Limit == 0:
		q.Limit = l.defaultLimit
	case q.Limit > l.maxLimit:
		q.Limit = l.maxLimit
	}
	if q.From > 0 && q.To > 0 && q.From > q.To {
		return nil, invalid("date_range", "from is after to")
	}

	return l.store.ListExpenses(ctx, storage.ExpenseFilter{
		PoolID:    q.PoolID,
		MemberID:  memberID,
		Category:  q.Category,
		PayerID:   q.PayerID,
		From:      q.From,
		To:        q.To,
		IsSettled: q.IsSettled,
		Limit:     q.Limit,
	})
}

// SettlePool marks every unsettled line item and expense of the pool as
// settled. Settling a pool with nothing outstanding is a no-op and returns a
// settlement with LineItemCount 0.
func (l *Ledger) SettlePool(ctx context.Context, memberID, poolID string) (*models.Settlement, error) {
	if _, err := l.poolFor(ctx, poolID, memberID); err != nil {
		return nil, err
	}

	settlement := &models.Settlement{PoolID: poolID, SettledBy: memberID}
	if err := l.store.SettlePool(ctx, settlement); err != nil {
		slog.Error("Failed to settle pool", "pool_id", poolID, "error", err)
		return nil, fromStore(err, "pool", poolID)
	}
	if settlement.LineItemCount == 0 {
		slog.Debug("Nothing to settle", "pool_id", poolID)
		return settlement, nil
	}

	l.metrics.PoolSettled()
	l.events.Record(activity.NewEvent(activity.PoolSettled,
		activity.WithPool(poolID),
		activity.WithActor(memberID),
		activity.WithData("settlement_id", settlement.ID),
		activity.WithData("total_amount", settlement.TotalAmount.StringFixed(2)),
	))
	slog.Info("Pool settled",
		"pool_id", poolID,
		"line_items", settlement.LineItemCount,
		"total_amount", settlement.TotalAmount.StringFixed(2),
	)
	return settlement, nil
}

// ListSettlements returns the pool's settlement history, newest first.
func (l *Ledger) ListSettlements(ctx context.Context, memberID, poolID string) ([]*models.Settlement, error) {
	if _, err := l.poolFor(ctx, poolID, memberID); err != nil {
		return nil, err
	}
	return l.store.ListSettlements(ctx, poolID)
}

// GetBalances returns the viewer's net balance with every other member of
// the pool over unsettled line items. Zero balances are omitted.
func (l *Ledger) GetBalances(ctx context.Context, viewerID, poolID string) ([]calculator.Balance, error) {
	if _, err := l.poolFor(ctx, poolID, viewerID); err != nil {
		return nil, err
	}
	lines, err := l.store.ListUnsettledLines(ctx, poolID)
	if err != nil {
		return nil, err
	}
	return calculator.ViewerBalances(viewerID, lines), nil
}

// PoolSummary is the group-wide view of a pool's outstanding balances.
type PoolSummary struct {
	PoolID    string
	Balances  []calculator.MemberBalance
	Transfers []calculator.DebtEdge
	// Names maps every member id in Balances to a display name.
	Names map[string]string
}

// GetPoolSummary returns every member's totals over unsettled line items and
// the transfers that would clear them. Members with nothing outstanding are
// listed with zero totals.
func (l *Ledger) GetPoolSummary(ctx context.Context, memberID, poolID string) (*PoolSummary, error) {
	pool, err := l.poolFor(ctx, poolID, memberID)
	if err != nil {
		return nil, err
	}
	lines, err := l.store.ListUnsettledLines(ctx, poolID)
	if err != nil {
		return nil, err
	}

	balances, transfers := calculator.PoolSummary(lines)
	seen := make(map[string]bool, len(balances))
	for _, b := range balances {
		seen[b.MemberID] = true
	}
	for _, id := range pool.MemberIDs() {
		if !seen[id] {
			balances = append(balances, calculator.MemberBalance{MemberID: id})
		}
	}
	sortMemberBalances(balances)

	ids := make([]string, len(balances))
	for i, b := range balances {
		ids[i] = b.MemberID
	}
	names, err := l.memberNames(ctx, ids)
	if err != nil {
		return nil, err
	}

	return &PoolSummary{PoolID: poolID, Balances: balances, Transfers: transfers, Names: names}, nil
}

// ListActivity returns the pool's most recent activity events, newest first.
func (l *Ledger) ListActivity(ctx context.Context, memberID, poolID string, limit int) ([]activity.Event, error) {
	if _, err := l.poolFor(ctx, poolID, memberID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	limit = min(limit, maxActivityLimit)
	return l.store.ListEvents(ctx, poolID, limit)
}
