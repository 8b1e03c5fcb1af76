package models

// CategoryRule maps expense names matching Pattern to Category.
// Rules only suggest; they never block expense creation.
type CategoryRule struct {
	ID       string
	MemberID string

	// Pattern is a regular expression, matched case-insensitively.
	// It is stored as entered, even if it does not compile.
	Pattern string

	Category string

	// Position orders a member's rules; the first match wins.
	Position int

	CreatedAt int64
}
