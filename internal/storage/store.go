// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitpool/internal/activity"
	"github.com/mmynk/splitpool/internal/models"
)

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint would be violated.
	ErrDuplicate = errors.New("already exists")
	// ErrSettled is returned when a settled expense would be mutated.
	ErrSettled = errors.New("expense is settled")
	// ErrNotMember is returned when an expense names someone who has left the pool.
	ErrNotMember = errors.New("not a pool member")
)

// ExpenseFilter narrows ListExpenses. Zero values mean "no filter".
type ExpenseFilter struct {
	PoolID string

	// MemberID selects whose share is embedded in each result.
	MemberID string

	Category string
	PayerID  string

	// From and To bound CreatedAt (Unix seconds, inclusive).
	From int64
	To   int64

	// IsSettled filters on settlement state when non-nil.
	IsSettled *bool

	Limit int
}

// Store defines the interface for splitpool storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the ledger or service layers.
//
// Every multi-row write runs in a single transaction, so readers never observe
// an expense whose line items do not add up, and a settle up never interleaves
// with an expense write.
type Store interface {
	MemberStore
	PoolStore
	ExpenseStore
	CategoryRuleStore
	activity.Store

	// Close releases any resources held by the store.
	Close() error
}

// MemberStore persists members.
type MemberStore interface {
	CreateMember(ctx context.Context, member *models.Member) error
	GetMember(ctx context.Context, memberID string) (*models.Member, error)
	GetMemberByEmail(ctx context.Context, email string) (*models.Member, error)
	GetMembersByIDs(ctx context.Context, ids []string) (map[string]*models.Member, error)
	UpdateMemberProfile(ctx context.Context, member *models.Member) error
}

// PoolStore persists pools and memberships.
type PoolStore interface {
	// CreatePool inserts the pool together with its initial memberships.
	CreatePool(ctx context.Context, pool *models.Pool) error
	GetPool(ctx context.Context, poolID string) (*models.Pool, error)
	ListPoolsForMember(ctx context.Context, memberID string) ([]*models.Pool, error)

	AddPoolMember(ctx context.Context, membership *models.PoolMembership) error

	// RemovePoolMember calls check with the pool's memberships and unsettled
	// lines inside the deleting transaction; a non-nil result aborts the delete
	// and is returned unchanged.
	RemovePoolMember(ctx context.Context, poolID, memberID string,
		check func([]models.PoolMembership, []models.LedgerLine) error) error

	// UpdateDefaultSplits writes the given percentages and then calls check with
	// the pool's full membership list, inside the same transaction. A non-nil
	// error from check rolls everything back and is returned unchanged.
	UpdateDefaultSplits(ctx context.Context, poolID string, splits map[string]decimal.Decimal,
		check func([]models.PoolMembership) error) error
}

// ExpenseStore persists the expense ledger.
type ExpenseStore interface {
	// CreateExpense inserts the expense and its line items atomically.
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// UpdateExpense replaces the expense fields and all of its line items.
	// Returns ErrSettled if the stored expense is already settled.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense removes the expense and its line items.
	// Returns ErrSettled if the stored expense is already settled.
	DeleteExpense(ctx context.Context, expenseID string) error

	// ListExpenses returns expenses newest first, each with the filter member's share.
	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]*models.ExpenseSummary, error)

	// ListUnsettledLines returns every unsettled line item of the pool joined with its payer.
	ListUnsettledLines(ctx context.Context, poolID string) ([]models.LedgerLine, error)

	// SettlePool flips every unsettled line item and expense of the pool to settled
	// and records the settlement. Nothing is written when there is nothing to settle;
	// settlement.LineItemCount is 0 in that case.
	SettlePool(ctx context.Context, settlement *models.Settlement) error
	ListSettlements(ctx context.Context, poolID string) ([]*models.Settlement, error)
}

// CategoryRuleStore persists category rules.
type CategoryRuleStore interface {
	CreateCategoryRule(ctx context.Context, rule *models.CategoryRule) error
	ListCategoryRules(ctx context.Context, memberID string) ([]models.CategoryRule, error)
	DeleteCategoryRule(ctx context.Context, memberID, ruleID string) error
}
