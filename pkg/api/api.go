// Package api defines the request and response messages of the splitpool
// RPC services. Messages are encoded as JSON; money is a decimal string
// with 2 fractional digits ("33.34"), timestamps are Unix seconds.
package api

import "github.com/shopspring/decimal"

// Member is a member's public profile.
type Member struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName,omitempty"`
	Bio           string `json:"bio,omitempty"`
	PaymentHandle string `json:"paymentHandle,omitempty"`
	CreatedAt     int64  `json:"createdAt"`
}

type RegisterRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

type RegisterResponse struct {
	Member *Member `json:"member"`
	Token  string  `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Member *Member `json:"member"`
	Token  string  `json:"token"`
}

type GetCurrentMemberRequest struct{}

type GetCurrentMemberResponse struct {
	Member *Member `json:"member"`
}

// UpdateProfileRequest changes the fields that are set; absent fields are kept.
type UpdateProfileRequest struct {
	FirstName     *string `json:"firstName,omitempty"`
	LastName      *string `json:"lastName,omitempty"`
	Bio           *string `json:"bio,omitempty"`
	PaymentHandle *string `json:"paymentHandle,omitempty"`
}

type UpdateProfileResponse struct {
	Member *Member `json:"member"`
}

// Pool is a pool with its memberships in join order.
type Pool struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Members     []Membership `json:"members"`
	CreatedAt   int64        `json:"createdAt"`
}

// Membership is one member's place in a pool.
type Membership struct {
	MemberID               string          `json:"memberId"`
	DisplayName            string          `json:"displayName,omitempty"`
	Role                   string          `json:"role"`
	DefaultSplitPercentage decimal.Decimal `json:"defaultSplitPercentage"`
	JoinedAt               int64           `json:"joinedAt"`
}

type CreatePoolRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CreatePoolResponse struct {
	Pool *Pool `json:"pool"`
}

type GetPoolRequest struct {
	PoolID string `json:"poolId"`
}

type GetPoolResponse struct {
	Pool *Pool `json:"pool"`
}

type ListPoolsRequest struct{}

type ListPoolsResponse struct {
	Pools []*Pool `json:"pools"`
}

// AddMemberRequest names the new member by id or, when MemberID is empty, by email.
type AddMemberRequest struct {
	PoolID   string `json:"poolId"`
	MemberID string `json:"memberId,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

type AddMemberResponse struct {
	Membership *Membership `json:"membership"`
}

type RemoveMemberRequest struct {
	PoolID   string `json:"poolId"`
	MemberID string `json:"memberId"`
}

type RemoveMemberResponse struct{}

type DefaultSplit struct {
	MemberID   string          `json:"memberId"`
	Percentage decimal.Decimal `json:"percentage"`
}

type UpdateDefaultSplitsRequest struct {
	PoolID string         `json:"poolId"`
	Splits []DefaultSplit `json:"splits"`
}

type UpdateDefaultSplitsResponse struct {
	Pool *Pool `json:"pool"`
}

// Balance is the viewer's net position with one other member.
// Amount is positive when the other member owes the viewer.
type Balance struct {
	OtherMemberID string          `json:"otherMemberId"`
	Amount        decimal.Decimal `json:"amount"`
	Direction     string          `json:"direction"`
}

type GetBalancesRequest struct {
	PoolID string `json:"poolId"`
}

type GetBalancesResponse struct {
	Balances []Balance `json:"balances"`
}

type MemberBalance struct {
	MemberID    string          `json:"memberId"`
	DisplayName string          `json:"displayName,omitempty"`
	TotalPaid   decimal.Decimal `json:"totalPaid"`
	TotalOwed   decimal.Decimal `json:"totalOwed"`
	Net         decimal.Decimal `json:"net"`
}

type Transfer struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

type GetPoolSummaryRequest struct {
	PoolID string `json:"poolId"`
}

type GetPoolSummaryResponse struct {
	Balances  []MemberBalance `json:"balances"`
	Transfers []Transfer      `json:"transfers"`
}

type SettlePoolRequest struct {
	PoolID string `json:"poolId"`
}

// SettlePoolResponse acknowledges a settle up. SettledCount is 0 when there
// was nothing to settle; SettlementID is empty in that case.
type SettlePoolResponse struct {
	SettlementID string          `json:"settlementId,omitempty"`
	SettledCount int             `json:"settledCount"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
}

type Settlement struct {
	ID            string          `json:"id"`
	SettledBy     string          `json:"settledBy"`
	LineItemCount int             `json:"lineItemCount"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	CreatedAt     int64           `json:"createdAt"`
}

type ListSettlementsRequest struct {
	PoolID string `json:"poolId"`
}

type ListSettlementsResponse struct {
	Settlements []Settlement `json:"settlements"`
}

type ActivityEvent struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	ActorID   string            `json:"actorId,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
	CreatedAt int64             `json:"createdAt"`
}

type ListActivityRequest struct {
	PoolID string `json:"poolId"`
	Limit  int    `json:"limit,omitempty"`
}

type ListActivityResponse struct {
	Events []ActivityEvent `json:"events"`
}

// SplitMember is one debtor of a split. Weight is an amount for the "amount"
// method, a percentage for "percentage", and ignored otherwise.
type SplitMember struct {
	MemberID string              `json:"memberId"`
	Weight   decimal.NullDecimal `json:"weight"`
}

// Split selects a split method ("equal", "amount", "percentage", "default").
// An empty method means "equal"; no members means every pool member.
type Split struct {
	Method  string        `json:"method,omitempty"`
	Members []SplitMember `json:"members,omitempty"`
}

type LineItem struct {
	ID        string          `json:"id,omitempty"`
	DebtorID  string          `json:"debtorId"`
	Amount    decimal.Decimal `json:"amount"`
	IsSettled bool            `json:"isSettled"`
}

type Expense struct {
	ID          string          `json:"id"`
	PoolID      string          `json:"poolId"`
	PayerID     string          `json:"payerId"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	SplitMethod string          `json:"splitMethod"`
	IsSettled   bool            `json:"isSettled"`
	LineItems   []LineItem      `json:"lineItems,omitempty"`
	CreatedAt   int64           `json:"createdAt"`
	UpdatedAt   int64           `json:"updatedAt"`
	SettledAt   int64           `json:"settledAt,omitempty"`
}

type CreateExpenseRequest struct {
	PoolID      string          `json:"poolId"`
	PayerID     string          `json:"payerId"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Split       Split           `json:"split"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type GetExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

// UpdateExpenseRequest replaces every field of an unsettled expense.
type UpdateExpenseRequest struct {
	ExpenseID   string          `json:"expenseId"`
	PayerID     string          `json:"payerId"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Split       Split           `json:"split"`
}

type UpdateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type DeleteExpenseResponse struct{}

type ListExpensesRequest struct {
	PoolID    string `json:"poolId"`
	Category  string `json:"category,omitempty"`
	PayerID   string `json:"payerId,omitempty"`
	From      int64  `json:"from,omitempty"`
	To        int64  `json:"to,omitempty"`
	IsSettled *bool  `json:"isSettled,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

// ExpenseSummary is a listed expense with the caller's own share of it.
type ExpenseSummary struct {
	Expense   *Expense        `json:"expense"`
	YourShare decimal.Decimal `json:"yourShare"`
}

type ListExpensesResponse struct {
	Expenses []ExpenseSummary `json:"expenses"`
}

type PreviewSplitRequest struct {
	PoolID string          `json:"poolId"`
	Amount decimal.Decimal `json:"amount"`
	Split  Split           `json:"split"`
}

type PreviewSplitResponse struct {
	LineItems []LineItem `json:"lineItems"`
}

type CategoryRule struct {
	ID       string `json:"id"`
	Pattern  string `json:"pattern"`
	Category string `json:"category"`
	Position int    `json:"position"`
}

type CreateCategoryRuleRequest struct {
	Pattern  string `json:"pattern"`
	Category string `json:"category"`
}

type CreateCategoryRuleResponse struct {
	Rule *CategoryRule `json:"rule"`
}

type ListCategoryRulesRequest struct{}

type ListCategoryRulesResponse struct {
	Rules []CategoryRule `json:"rules"`
}

type DeleteCategoryRuleRequest struct {
	RuleID string `json:"ruleId"`
}

type DeleteCategoryRuleResponse struct{}

type SuggestCategoryRequest struct {
	Name string `json:"name"`
}

// SuggestCategoryResponse carries the suggestion; Found is false when no rule matched.
type SuggestCategoryResponse struct {
	Category string `json:"category,omitempty"`
	Found    bool   `json:"found"`
}
