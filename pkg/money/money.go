// Package money converts between decimal dollar amounts and integer minor units.
package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// FromDollars converts a dollar amount to cents, rounding half away from zero.
func FromDollars(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromCents converts minor units to a dollar amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Float returns the amount as a float64 for JSON responses.
func Float(amount decimal.Decimal) float64 {
	f, _ := amount.Round(2).Float64()
	return f
}

// Max returns the larger of a and b.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
