package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(v decimal.Decimal) *decimal.Decimal { return &v }

var minimumCharge = d("0.50")

func TestEffectivePrice(t *testing.T) {
	tests := []struct {
		name string
		item LineItem
		want string
	}{
		{name: "list price", item: LineItem{Price: d("29.99")}, want: "29.99"},
		{name: "sale price wins", item: LineItem{Price: d("29.99"), SalePrice: ptr(d("19.99"))}, want: "19.99"},
		{name: "zero sale ignored", item: LineItem{Price: d("29.99"), SalePrice: ptr(decimal.Zero)}, want: "29.99"},
		{name: "sale above list still wins", item: LineItem{Price: d("10"), SalePrice: ptr(d("12"))}, want: "12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.item.EffectivePrice().Equal(d(tt.want)), "got %s", tt.item.EffectivePrice())
		})
	}
}

func TestSubtotal(t *testing.T) {
	items := []LineItem{
		{ID: "a", Price: d("10"), Quantity: 2},
		{ID: "b", Price: d("30"), SalePrice: ptr(d("15.50")), Quantity: 1},
	}
	assert.True(t, Subtotal(items).Equal(d("35.50")))
	assert.True(t, Subtotal(nil).IsZero())
}

func TestNormalizeMinimumWorkedExamples(t *testing.T) {
	t.Run("single item no promo", func(t *testing.T) {
		sub := Subtotal([]LineItem{{Price: d("10"), Quantity: 2}})
		totals := NormalizeMinimum(sub, decimal.Zero, minimumCharge)
		require.Equal(t, OutcomeNormal, totals.Outcome)
		assert.True(t, totals.Total.Equal(d("20")))
		assert.Equal(t, int64(2000), totals.TotalCents)
		assert.False(t, totals.IsFreeOrder)
	})

	t.Run("below minimum is clamped", func(t *testing.T) {
		sub := Subtotal([]LineItem{{Price: d("0.30"), Quantity: 1}})
		totals := NormalizeMinimum(sub, decimal.Zero, minimumCharge)
		require.Equal(t, OutcomeMinimumClamped, totals.Outcome)
		assert.True(t, totals.Total.Equal(d("0.50")))
		assert.Equal(t, int64(50), totals.TotalCents)
		assert.True(t, totals.MinimumApplied)
		assert.True(t, totals.Discount.IsZero())
	})

	t.Run("percent discount", func(t *testing.T) {
		totals := NormalizeMinimum(d("50"), d("10"), minimumCharge)
		assert.True(t, totals.Total.Equal(d("40")))
		assert.True(t, totals.Discount.Equal(d("10")))
	})

	t.Run("all free items", func(t *testing.T) {
		sub := Subtotal([]LineItem{{Price: decimal.Zero, Quantity: 3}})
		totals := NormalizeMinimum(sub, decimal.Zero, minimumCharge)
		assert.True(t, totals.IsFreeOrder)
		assert.Equal(t, OutcomeFree, totals.Outcome)
		assert.Equal(t, int64(0), totals.TotalCents)
	})
}

func TestNormalizeMinimumDiscountBounds(t *testing.T) {
	t.Run("discount larger than subtotal is a free order", func(t *testing.T) {
		totals := NormalizeMinimum(d("5"), d("20"), minimumCharge)
		assert.True(t, totals.IsFreeOrder)
		assert.True(t, totals.Total.IsZero())
		assert.True(t, totals.Discount.Equal(d("5")))
	})

	t.Run("discount leaves a sub-minimum remainder", func(t *testing.T) {
		totals := NormalizeMinimum(d("10"), d("9.80"), minimumCharge)
		require.True(t, totals.MinimumApplied)
		assert.True(t, totals.Total.Equal(d("0.50")))
		assert.True(t, totals.Discount.Equal(d("9.50")))
	})

	t.Run("exactly the minimum is not clamped", func(t *testing.T) {
		totals := NormalizeMinimum(d("0.50"), decimal.Zero, minimumCharge)
		assert.Equal(t, OutcomeNormal, totals.Outcome)
		assert.False(t, totals.MinimumApplied)
	})

	t.Run("negative discount is ignored", func(t *testing.T) {
		totals := NormalizeMinimum(d("12"), d("-3"), minimumCharge)
		assert.True(t, totals.Total.Equal(d("12")))
		assert.True(t, totals.Discount.IsZero())
	})

	t.Run("sub-cent remainder is clamped to the minimum", func(t *testing.T) {
		totals := NormalizeMinimum(d("0.004"), decimal.Zero, minimumCharge)
		assert.False(t, totals.IsFreeOrder)
		assert.True(t, totals.MinimumApplied)
		assert.Equal(t, OutcomeMinimumClamped, totals.Outcome)
		assert.Equal(t, int64(50), totals.TotalCents)
	})
}

func TestNormalizeMinimumInvariants(t *testing.T) {
	subtotals := []string{"0", "0.001", "0.004", "0.01", "0.49", "0.50", "7.25", "100"}
	discounts := []string{"0", "0.0001", "0.25", "7", "150"}
	for _, s := range subtotals {
		for _, disc := range discounts {
			totals := NormalizeMinimum(d(s), d(disc), minimumCharge)
			assert.False(t, totals.Total.IsNegative(), "total negative for %s/%s", s, disc)
			assert.False(t, totals.Discount.IsNegative(), "discount negative for %s/%s", s, disc)
			assert.Equal(t, !d(s).Sub(d(disc)).IsPositive(), totals.IsFreeOrder, "free order mismatch for %s/%s", s, disc)
			if !totals.IsFreeOrder {
				assert.True(t, totals.Total.GreaterThanOrEqual(minimumCharge), "total below minimum for %s/%s", s, disc)
			}
			if !totals.MinimumApplied {
				assert.True(t, totals.Subtotal.Sub(totals.Discount).Equal(totals.Total), "inconsistent totals for %s/%s", s, disc)
			}
		}
	}
}
