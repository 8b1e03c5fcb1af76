package models

import "github.com/shopspring/decimal"

// SplitMethod selects how an expense amount is divided among debtors.
type SplitMethod string

const (
	// SplitEqual divides the total evenly across the participating members.
	SplitEqual SplitMethod = "equal"
	// SplitAmount uses absolute amounts entered per debtor.
	SplitAmount SplitMethod = "amount"
	// SplitPercentage uses percentages of the total entered per debtor.
	SplitPercentage SplitMethod = "percentage"
	// SplitDefault reads each debtor's percentage from their pool membership.
	SplitDefault SplitMethod = "default"
)

// Valid reports whether m is a known split method.
func (m SplitMethod) Valid() bool {
	switch m {
	case SplitEqual, SplitAmount, SplitPercentage, SplitDefault:
		return true
	}
	return false
}

// Expense is an amount one member paid on behalf of the pool.
// The amounts of its line items always sum to Amount exactly.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// PoolID is the pool the expense belongs to.
	PoolID string

	// PayerID is the member who paid.
	PayerID string

	// Name is a short label ("Groceries", "Uber to airport").
	Name string

	// Amount is the positive total, rounded to 2 decimal places.
	Amount decimal.Decimal

	Description string
	Category    string
	Notes       string

	// SplitMethod records how the line items were produced.
	SplitMethod SplitMethod

	// IsSettled becomes true through a pool-wide settle up and never goes back.
	IsSettled bool

	// LineItems are the per-debtor shares.
	LineItems []ExpenseLineItem

	// CreatedAt, UpdatedAt and SettledAt are Unix timestamps (SettledAt is 0 while unsettled).
	CreatedAt int64
	UpdatedAt int64
	SettledAt int64
}

// LineItemTotal sums the amounts of the expense's line items.
func (e *Expense) LineItemTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, li := range e.LineItems {
		sum = sum.Add(li.Amount)
	}
	return sum
}

// ShareOf returns the amount owed by memberID on this expense, or zero.
func (e *Expense) ShareOf(memberID string) decimal.Decimal {
	for _, li := range e.LineItems {
		if li.DebtorID == memberID {
			return li.Amount
		}
	}
	return decimal.Zero
}

// ExpenseLineItem is the portion of one expense owed by one debtor.
type ExpenseLineItem struct {
	ID        string
	ExpenseID string
	DebtorID  string
	Amount    decimal.Decimal
	IsSettled bool
}

// ExpenseSummary is an expense as seen by one member in a listing:
// the expense itself plus that member's own share.
type ExpenseSummary struct {
	Expense     Expense
	MemberShare decimal.Decimal
}

// LedgerLine is an unsettled line item joined with its expense's payer.
// It is the input of every balance computation.
type LedgerLine struct {
	ExpenseID string
	PayerID   string
	DebtorID  string
	Amount    decimal.Decimal
}
