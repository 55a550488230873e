package money

import (
	"github.com/shopspring/decimal"
)

// Epsilon is the rounding tolerance used when comparing amounts that were
// rounded per division: 0.01 absolute.
var Epsilon = decimal.NewFromFloat(0.01)

// Round applies banker's (unbiased) rounding to two decimal places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}

// Percent returns amount * pct / 100 without rounding.
func Percent(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(decimal.NewFromInt(100))
}

// ApplyDiscount returns amount * (1 - pct/100) without rounding.
func ApplyDiscount(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Sub(Percent(amount, pct))
}

// EqualWithin reports whether a and b differ by no more than Epsilon.
func EqualWithin(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Epsilon)
}
