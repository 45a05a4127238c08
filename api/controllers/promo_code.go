package controllers

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/nnaudio/storefront-api/api/responses"
	"github.com/nnaudio/storefront-api/api/validators"
	"github.com/nnaudio/storefront-api/internal/promotions"
	pkgerrors "github.com/nnaudio/storefront-api/pkg/errors"
	"github.com/nnaudio/storefront-api/pkg/logger"
	"github.com/nnaudio/storefront-api/pkg/money"
)

// PromoCodeValidator previews a promotion code against a cart amount.
type PromoCodeValidator interface {
	Validate(ctx context.Context, code string, amount decimal.Decimal) (*promotions.Validation, error)
}

type promoCodeRequest struct {
	Code   string          `json:"code"`
	Amount decimal.Decimal `json:"amount"`
}

type promoCodeResponse struct {
	Success        bool                `json:"success"`
	PromotionCode  promoCodeRef        `json:"promotionCode"`
	Coupon         promoCouponResponse `json:"coupon"`
	Discount       promoDiscount       `json:"discount"`
	OriginalAmount float64             `json:"originalAmount"`
	FinalAmount    float64             `json:"finalAmount"`
}

type promoCodeRef struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

type promoCouponResponse struct {
	ID         string   `json:"id"`
	Name       string   `json:"name,omitempty"`
	PercentOff *float64 `json:"percent_off"`
	AmountOff  *int64   `json:"amount_off"`
	Currency   string   `json:"currency,omitempty"`
}

type promoDiscount struct {
	Amount  float64 `json:"amount"`
	Percent float64 `json:"percent"`
}

// ValidatePromoCode reports whether a code can be used and what it would save.
func ValidatePromoCode(validator PromoCodeValidator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if validator == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "promotion validator unavailable"))
			return
		}

		var payload promoCodeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := validator.Validate(r.Context(), validators.SanitizeCode(payload.Code), payload.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newPromoCodeResponse(result))
	}
}

func newPromoCodeResponse(v *promotions.Validation) promoCodeResponse {
	coupon := promoCouponResponse{
		ID:       v.Coupon.ID,
		Name:     v.Coupon.Name,
		Currency: v.Coupon.Currency,
	}
	if v.Coupon.PercentOff > 0 {
		percent := v.Coupon.PercentOff
		coupon.PercentOff = &percent
	}
	if v.Coupon.AmountOffCents > 0 {
		amount := v.Coupon.AmountOffCents
		coupon.AmountOff = &amount
	}

	percent, _ := v.DiscountPercent.Float64()
	return promoCodeResponse{
		Success:        true,
		PromotionCode:  promoCodeRef{ID: v.PromotionCodeID, Code: v.Code},
		Coupon:         coupon,
		Discount:       promoDiscount{Amount: money.Float(v.DiscountAmount), Percent: percent},
		OriginalAmount: money.Float(v.OriginalAmount),
		FinalAmount:    money.Float(v.FinalAmount),
	}
}
