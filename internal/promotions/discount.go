package promotions

import (
	"github.com/shopspring/decimal"

	"github.com/nnaudio/storefront-api/pkg/money"
)

var hundred = decimal.NewFromInt(100)

// Discount computes the amount a valid coupon takes off subtotal. Percentages
// are clamped to [0, 100], fixed amounts to the subtotal, and the result is
// rounded to cents.
func Discount(c Coupon, subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}

	var amount decimal.Decimal
	switch c.Kind() {
	case KindPercent:
		pct := money.Min(decimal.NewFromFloat(c.PercentOff), hundred)
		amount = subtotal.Mul(pct).Div(hundred)
	case KindFixed:
		amount = money.FromCents(c.AmountOffCents)
	default:
		return decimal.Zero
	}

	return money.Min(amount, subtotal).Round(2)
}
