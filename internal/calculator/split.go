package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitpool/internal/models"
)

var (
	ErrNoMembers        = errors.New("must have at least one member")
	ErrNonPositiveTotal = errors.New("amount must be positive")
	ErrDuplicateMember  = errors.New("member appears more than once")
	ErrMissingWeight    = errors.New("member is missing a split value")
	ErrNegativeWeight   = errors.New("split values cannot be negative")
	ErrUnknownMethod    = errors.New("unknown split method")
)

// Share is one debtor taking part in a split.
// Weight is an absolute amount for SplitAmount and a percentage for SplitPercentage
// and SplitDefault; it is ignored for SplitEqual.
type Share struct {
	MemberID string
	Weight   decimal.NullDecimal
}

// LineItem is the amount one member owes for an expense.
type LineItem struct {
	MemberID string
	Amount   decimal.Decimal
}

// MismatchError reports split values that do not reconcile with the total
// within rounding tolerance.
type MismatchError struct {
	Method   models.SplitMethod
	Expected decimal.Decimal
	Computed decimal.Decimal
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s split does not add up: expected %s, computed %s",
		e.Method, e.Expected.StringFixed(2), e.Computed.StringFixed(2))
}

// Allocate turns a total and a split method into one line item per share,
// in input order, whose amounts sum exactly to the rounded total.
//
// Algorithm:
//   - each share is computed and rounded on its own
//   - drift = sum - total; tolerance = |n × round(total/n) - total| + 0.01
//   - drift under tolerance is absorbed by the first share, anything else is a MismatchError
func Allocate(total decimal.Decimal, method models.SplitMethod, shares []Share) ([]LineItem, error) {
	if !method.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	total = RoundMoney(total)
	if !total.IsPositive() {
		return nil, ErrNonPositiveTotal
	}
	if err := validateShares(method, shares); err != nil {
		return nil, err
	}

	n := decimal.NewFromInt(int64(len(shares)))
	equalShare := RoundMoney(total.Div(n))

	items := make([]LineItem, len(shares))
	sum := decimal.Zero
	for i, s := range shares {
		var amount decimal.Decimal
		switch method {
		case models.SplitEqual:
			amount = equalShare
		case models.SplitAmount:
			amount = RoundMoney(s.Weight.Decimal)
		case models.SplitPercentage, models.SplitDefault:
			amount = RoundMoney(s.Weight.Decimal.Mul(total).Div(hundred))
		}
		items[i] = LineItem{MemberID: s.MemberID, Amount: amount}
		sum = sum.Add(amount)
	}

	roundingError := sum.Sub(total).Abs()
	maxRoundingError := equalShare.Mul(n).Sub(total).Abs().Add(cent)
	if roundingError.GreaterThanOrEqual(maxRoundingError) {
		return nil, &MismatchError{Method: method, Expected: total, Computed: sum}
	}

	drift := total.Sub(sum)
	if items[0].Amount.Add(drift).IsNegative() {
		// Only reachable when a few cents are spread over many members.
		spreadCents(items, drift)
	} else {
		items[0].Amount = items[0].Amount.Add(drift)
	}
	return items, nil
}

// spreadCents takes a negative drift back one cent at a time, starting from
// the first item and skipping items that are already zero.
func spreadCents(items []LineItem, drift decimal.Decimal) {
	for i := 0; drift.IsNegative(); i = (i + 1) % len(items) {
		if items[i].Amount.GreaterThanOrEqual(cent) {
			items[i].Amount = items[i].Amount.Sub(cent)
			drift = drift.Add(cent)
		}
	}
}

func validateShares(method models.SplitMethod, shares []Share) error {
	if len(shares) == 0 {
		return ErrNoMembers
	}
	seen := make(map[string]bool, len(shares))
	for _, s := range shares {
		if s.MemberID == "" {
			return fmt.Errorf("%w: empty member id", ErrMissingWeight)
		}
		if seen[s.MemberID] {
			return fmt.Errorf("%w: %s", ErrDuplicateMember, s.MemberID)
		}
		seen[s.MemberID] = true

		if method == models.SplitEqual {
			continue
		}
		if !s.Weight.Valid {
			return fmt.Errorf("%w: %s", ErrMissingWeight, s.MemberID)
		}
		if s.Weight.Decimal.IsNegative() {
			return fmt.Errorf("%w: %s", ErrNegativeWeight, s.MemberID)
		}
	}
	return nil
}

// SumLineItems adds up the amounts of items.
func SumLineItems(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Amount)
	}
	return sum
}
