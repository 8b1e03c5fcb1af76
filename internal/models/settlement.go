package models

import "github.com/shopspring/decimal"

// Settlement records one pool-wide settle up: every line item that was unsettled
// at that moment was flipped to settled.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// PoolID is the pool that was settled.
	PoolID string

	// SettledBy is the member who triggered the settle up.
	SettledBy string

	// LineItemCount is the number of line items flipped.
	LineItemCount int

	// TotalAmount is the sum of the flipped line items, payer's own shares included.
	TotalAmount decimal.Decimal

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64
}
