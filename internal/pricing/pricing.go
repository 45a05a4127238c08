// Package pricing aggregates cart lines and normalizes the final charge against
// the processor minimum.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/nnaudio/storefront-api/pkg/money"
)

// LineItem is one cart line as submitted by the storefront.
type LineItem struct {
	ID            string
	Name          string
	Price         decimal.Decimal
	SalePrice     *decimal.Decimal
	Quantity      int
	StripePriceID string
}

// EffectivePrice is the sale price when present and positive, otherwise the list price.
func (li LineItem) EffectivePrice() decimal.Decimal {
	if li.SalePrice != nil && li.SalePrice.IsPositive() {
		return *li.SalePrice
	}
	return li.Price
}

// OnSale reports whether the sale price is in effect.
func (li LineItem) OnSale() bool {
	return li.SalePrice != nil && li.SalePrice.IsPositive()
}

// LineTotal is the effective price times the quantity.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.EffectivePrice().Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Subtotal sums every line total. An empty cart sums to zero.
func Subtotal(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}

// Outcome classifies how the minimum-charge rule treated a total.
type Outcome string

const (
	OutcomeFree           Outcome = "free"
	OutcomeMinimumClamped Outcome = "minimum_clamped"
	OutcomeNormal         Outcome = "normal"
)

// Totals is the normalized charge for a cart. Subtotal - Discount == Total holds
// unless the minimum clamp raised Total above Subtotal, in which case Discount is zero.
type Totals struct {
	Subtotal       decimal.Decimal
	Discount       decimal.Decimal
	Total          decimal.Decimal
	TotalCents     int64
	IsFreeOrder    bool
	MinimumApplied bool
	Outcome        Outcome
}

// NormalizeMinimum applies the discount and the processor minimum to subtotal.
// Only a total of exactly zero is a free order. Any positive total below the
// minimum, however small, is raised to it and the discount is recomputed from
// the new total.
func NormalizeMinimum(subtotal, discount, minimum decimal.Decimal) Totals {
	subtotal = money.Max(subtotal, decimal.Zero)
	discount = money.Max(discount, decimal.Zero)
	total := money.Max(subtotal.Sub(discount), decimal.Zero)

	totals := Totals{Subtotal: subtotal}

	switch {
	case total.IsZero():
		totals.Total = decimal.Zero
		totals.IsFreeOrder = true
		totals.Outcome = OutcomeFree
	case minimum.IsPositive() && total.LessThan(minimum):
		totals.Total = minimum
		totals.MinimumApplied = true
		totals.Outcome = OutcomeMinimumClamped
	default:
		totals.Total = total
		totals.Outcome = OutcomeNormal
	}

	totals.TotalCents = money.FromDollars(totals.Total)
	totals.Discount = money.Max(subtotal.Sub(totals.Total), decimal.Zero)
	return totals
}
