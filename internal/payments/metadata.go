package payments

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/nnaudio/storefront-api/internal/pricing"
	"github.com/nnaudio/storefront-api/internal/promotions"
)

// maxMetadataValue is the processor's per-value metadata limit.
const maxMetadataValue = 500

type cartItemMetadata struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

func buildMetadata(in CreateIntentInput, totals pricing.Totals, promo promotions.Result) map[string]string {
	userID := in.UserID
	if userID == "" {
		userID = AnonymousUserID
	}

	md := map[string]string{
		"cart_items":             cartItemsValue(in.Items),
		"subtotal":               totals.Subtotal.StringFixed(2),
		"discount_amount":        totals.Discount.StringFixed(2),
		"total_amount":           totals.Total.StringFixed(2),
		"user_id":                userID,
		"minimum_charge_applied": strconv.FormatBool(totals.MinimumApplied),
	}
	if in.PromotionCode != "" {
		md["promotion_code"] = truncateMetadata(in.PromotionCode)
	}
	if applied, ok := promo.Applied(); ok {
		md["promotion_code_id"] = applied.PromotionCodeID
	}
	return md
}

// truncateMetadata cuts value to the metadata limit on a rune boundary.
func truncateMetadata(value string) string {
	if len(value) <= maxMetadataValue {
		return value
	}
	cut := 0
	for i := range value {
		if i > maxMetadataValue {
			break
		}
		cut = i
	}
	return value[:cut]
}

// cartItemsValue encodes the cart as JSON, degrading to the item ids and then
// to a count when the value would exceed the metadata limit.
func cartItemsValue(items []pricing.LineItem) string {
	lines := make([]cartItemMetadata, 0, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		price, _ := item.EffectivePrice().Float64()
		lines = append(lines, cartItemMetadata{
			ID:       item.ID,
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    price,
		})
		ids = append(ids, item.ID)
	}

	if raw, err := json.Marshal(lines); err == nil && len(raw) <= maxMetadataValue {
		return string(raw)
	}
	if raw, err := json.Marshal(ids); err == nil && len(raw) <= maxMetadataValue {
		return string(raw)
	}
	return fmt.Sprintf("%d items", len(items))
}
