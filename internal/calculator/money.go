package calculator

import "github.com/shopspring/decimal"

var (
	cent    = decimal.New(1, -2)
	hundred = decimal.NewFromInt(100)
)

// RoundMoney rounds x to 2 decimal places, half away from zero.
// Every amount stored or returned by splitpool goes through here.
func RoundMoney(x decimal.Decimal) decimal.Decimal {
	return x.Round(2)
}
