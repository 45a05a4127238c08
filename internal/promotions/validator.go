package promotions

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/nnaudio/storefront-api/pkg/errors"
	"github.com/nnaudio/storefront-api/pkg/money"
	pkgstripe "github.com/nnaudio/storefront-api/pkg/stripe"
)

// Validation is the preview of a promotion code against a cart amount.
type Validation struct {
	PromotionCodeID string
	Code            string
	Coupon          Coupon
	DiscountAmount  decimal.Decimal
	DiscountPercent decimal.Decimal
	OriginalAmount  decimal.Decimal
	FinalAmount     decimal.Decimal
}

// Validator checks a customer-entered code before checkout. Unlike Resolver it
// reports why a code is unusable.
type Validator struct {
	client   Client
	currency string
	now      func() time.Time
}

// NewValidator builds a validator for carts priced in currency.
func NewValidator(client Client, currency string) (*Validator, error) {
	if client == nil {
		return nil, errors.New("promotion client required")
	}
	return &Validator{client: client, currency: normalizeCurrency(currency), now: time.Now}, nil
}

// Validate resolves code and previews its discount on amount (dollars).
func (v *Validator) Validate(ctx context.Context, code string, amount decimal.Decimal) (*Validation, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Promo code is required")
	}
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Valid amount is required")
	}

	promo, err := v.client.FindActiveByCode(ctx, code)
	if errors.Is(err, ErrNotFound) || (err == nil && promo == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid promo code")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeProcessor, err, pkgstripe.ErrorMessage(err))
	}

	coupon, err := resolveCoupon(ctx, v.client, promo)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeProcessor, err, pkgstripe.ErrorMessage(err))
	}

	if !coupon.Valid {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "This promo code is no longer valid")
	}
	if coupon.MaxRedemptions > 0 && coupon.TimesRedeemed >= coupon.MaxRedemptions {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "This promo code has reached its usage limit")
	}
	if coupon.RedeemBy != nil && coupon.RedeemBy.Before(v.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "This promo code has expired")
	}
	if currencyMismatch(*coupon, v.currency) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "This promo code cannot be used with this currency")
	}

	discount := Discount(*coupon, amount)
	percent := decimal.Zero
	switch coupon.Kind() {
	case KindPercent:
		percent = money.Min(decimal.NewFromFloat(coupon.PercentOff), hundred)
	case KindFixed:
		percent = discount.Div(amount).Mul(hundred).Round(2)
	}

	return &Validation{
		PromotionCodeID: promo.ID,
		Code:            promo.Code,
		Coupon:          *coupon,
		DiscountAmount:  discount,
		DiscountPercent: percent,
		OriginalAmount:  amount,
		FinalAmount:     money.Max(amount.Sub(discount), decimal.Zero),
	}, nil
}
