package calculator

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitpool/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func weighted(pairs ...string) []Share {
	shares := make([]Share, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		shares = append(shares, Share{
			MemberID: pairs[i],
			Weight:   decimal.NewNullDecimal(d(pairs[i+1])),
		})
	}
	return shares
}

func equal(ids ...string) []Share {
	shares := make([]Share, len(ids))
	for i, id := range ids {
		shares[i] = Share{MemberID: id}
	}
	return shares
}

func amounts(items []LineItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Amount.StringFixed(2)
	}
	return out
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		name   string
		total  string
		method models.SplitMethod
		shares []Share
		want   []string
	}{
		{
			name:   "equal split, first member absorbs the remainder",
			total:  "100.00",
			method: models.SplitEqual,
			shares: equal("alice", "bob", "carol"),
			want:   []string{"33.34", "33.33", "33.33"},
		},
		{
			name:   "percentage split",
			total:  "50.00",
			method: models.SplitPercentage,
			shares: weighted("alice", "60", "bob", "40"),
			want:   []string{"30.00", "20.00"},
		},
		{
			name:   "default split reads stored percentages",
			total:  "10.00",
			method: models.SplitDefault,
			shares: weighted("alice", "70", "bob", "30"),
			want:   []string{"7.00", "3.00"},
		},
		{
			name:   "amount split that adds up",
			total:  "42.50",
			method: models.SplitAmount,
			shares: weighted("alice", "12.25", "bob", "30.25"),
			want:   []string{"12.25", "30.25"},
		},
		{
			name:   "single member takes everything",
			total:  "19.99",
			method: models.SplitEqual,
			shares: equal("alice"),
			want:   []string{"19.99"},
		},
		{
			name:   "percentage rounding drift goes to first member",
			total:  "10.00",
			method: models.SplitPercentage,
			shares: weighted("alice", "33.33", "bob", "33.33", "carol", "33.34"),
			want:   []string{"3.34", "3.33", "3.33"},
		},
		{
			name:   "tiny total spread over more members than cents",
			total:  "0.02",
			method: models.SplitEqual,
			shares: equal("a", "b", "c", "d"),
			want:   []string{"0.00", "0.00", "0.01", "0.01"},
		},
		{
			name:   "cents spread when the first member cannot absorb",
			total:  "0.07",
			method: models.SplitEqual,
			shares: equal("a", "b", "c", "d", "e", "f", "g", "h", "i", "j"),
			want:   []string{"0.00", "0.00", "0.00", "0.01", "0.01", "0.01", "0.01", "0.01", "0.01", "0.01"},
		},
		{
			name:   "unrounded total is rounded first",
			total:  "9.999",
			method: models.SplitEqual,
			shares: equal("alice", "bob"),
			want:   []string{"5.00", "5.00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := Allocate(d(tt.total), tt.method, tt.shares)
			require.NoError(t, err)
			assert.Equal(t, tt.want, amounts(items))
			assert.True(t, SumLineItems(items).Equal(RoundMoney(d(tt.total))),
				"sum %s != total %s", SumLineItems(items), tt.total)
			for i, s := range tt.shares {
				assert.Equal(t, s.MemberID, items[i].MemberID)
			}
		})
	}
}

func TestAllocate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		total   string
		method  models.SplitMethod
		shares  []Share
		wantErr error
	}{
		{"no members", "10", models.SplitEqual, nil, ErrNoMembers},
		{"zero total", "0", models.SplitEqual, equal("alice"), ErrNonPositiveTotal},
		{"negative total", "-5", models.SplitEqual, equal("alice"), ErrNonPositiveTotal},
		{"sub-cent total rounds to zero", "0.004", models.SplitEqual, equal("alice"), ErrNonPositiveTotal},
		{"duplicate member", "10", models.SplitEqual, equal("alice", "alice"), ErrDuplicateMember},
		{"missing amount", "10", models.SplitAmount, equal("alice"), ErrMissingWeight},
		{"negative percentage", "10", models.SplitPercentage, weighted("alice", "110", "bob", "-10"), ErrNegativeWeight},
		{"unknown method", "10", models.SplitMethod("shares"), equal("alice"), ErrUnknownMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Allocate(d(tt.total), tt.method, tt.shares)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
}

func TestAllocate_AmountMismatch(t *testing.T) {
	_, err := Allocate(d("100.00"), models.SplitAmount, weighted("alice", "40.00", "bob", "40.00"))

	var mismatch *MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "100.00", mismatch.Expected.StringFixed(2))
	assert.Equal(t, "80.00", mismatch.Computed.StringFixed(2))
	assert.Contains(t, err.Error(), "expected 100.00, computed 80.00")
}

func TestAllocate_PercentagesNotSummingTo100(t *testing.T) {
	_, err := Allocate(d("50.00"), models.SplitPercentage, weighted("alice", "60", "bob", "30"))

	var mismatch *MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "45.00", mismatch.Computed.StringFixed(2))
}

func TestAllocate_SumInvariant(t *testing.T) {
	totals := []string{"0.01", "0.07", "1.00", "10.01", "99.99", "100.00", "333.33", "12345.67"}

	for n := 1; n <= 50; n++ {
		ids := make([]string, n)
		for i := range ids {
			ids[i] = fmt.Sprintf("member-%02d", i)
		}

		for _, total := range totals {
			items, err := Allocate(d(total), models.SplitEqual, equal(ids...))
			require.NoError(t, err, "equal n=%d total=%s", n, total)
			require.True(t, SumLineItems(items).Equal(d(total)), "equal n=%d total=%s sum=%s", n, total, SumLineItems(items))
		}

		// Percentages that add to 100 with the remainder on the first member.
		base := decimal.NewFromInt(100).Div(decimal.NewFromInt(int64(n))).Truncate(2)
		pct := make([]Share, n)
		for i, id := range ids {
			pct[i] = Share{MemberID: id, Weight: decimal.NewNullDecimal(base)}
		}
		first := decimal.NewFromInt(100).Sub(base.Mul(decimal.NewFromInt(int64(n - 1))))
		pct[0].Weight = decimal.NewNullDecimal(first)

		for _, method := range []models.SplitMethod{models.SplitPercentage, models.SplitDefault, models.SplitAmount} {
			items, err := Allocate(d("100.00"), method, pct)
			require.NoError(t, err, "%s n=%d", method, n)
			require.True(t, SumLineItems(items).Equal(d("100.00")), "%s n=%d sum=%s", method, n, SumLineItems(items))
		}
	}
}

func TestAllocate_Deterministic(t *testing.T) {
	shares := equal("zed", "amy", "bob")
	first, err := Allocate(d("100.00"), models.SplitEqual, shares)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		again, err := Allocate(d("100.00"), models.SplitEqual, shares)
		require.NoError(t, err)
		assert.Equal(t, amounts(first), amounts(again))
		assert.Equal(t, "zed", again[0].MemberID)
		assert.Equal(t, "33.34", again[0].Amount.StringFixed(2))
	}
}
