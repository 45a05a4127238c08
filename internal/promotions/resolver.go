package promotions

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const directIDPrefix = "promo_"

// Resolver turns an optional promotion token into a discount. It never fails
// a checkout: every problem becomes an Ignored result.
type Resolver struct {
	client   Client
	currency string
}

// NewResolver builds a resolver for carts priced in currency.
func NewResolver(client Client, currency string) (*Resolver, error) {
	if client == nil {
		return nil, errors.New("promotion client required")
	}
	return &Resolver{client: client, currency: normalizeCurrency(currency)}, nil
}

// Resolve looks the token up and prices its coupon against subtotal. Tokens
// shaped like promotion code ids are fetched directly; anything else, or a
// failed direct fetch, falls back to an active-code search on the upper-cased token.
func (r *Resolver) Resolve(ctx context.Context, token string, subtotal decimal.Decimal) Result {
	token = strings.TrimSpace(token)
	if token == "" {
		return ignoredResult(token, ReasonNoCode, nil)
	}

	code, reason, err := r.lookup(ctx, token)
	if reason != "" {
		return ignoredResult(token, reason, err)
	}

	coupon, err := resolveCoupon(ctx, r.client, code)
	if err != nil {
		return ignoredResult(token, ReasonLookupFailed, err)
	}

	if !code.Active || !coupon.Valid {
		return ignoredResult(token, ReasonCouponInvalid, nil)
	}
	if currencyMismatch(*coupon, r.currency) {
		return ignoredResult(token, ReasonCurrencyMismatch, nil)
	}

	discount := Discount(*coupon, subtotal)
	if !discount.IsPositive() {
		return ignoredResult(token, ReasonNoDiscount, nil)
	}

	return appliedResult(Applied{
		PromotionCodeID: code.ID,
		Code:            code.Code,
		Coupon:          *coupon,
		Discount:        discount,
	})
}

func (r *Resolver) lookup(ctx context.Context, token string) (*PromotionCode, Reason, error) {
	var directErr error
	if strings.HasPrefix(token, directIDPrefix) {
		code, err := r.client.GetPromotionCode(ctx, token)
		if err == nil && code != nil {
			return code, "", nil
		}
		directErr = err
	}

	code, err := r.client.FindActiveByCode(ctx, strings.ToUpper(token))
	switch {
	case errors.Is(err, ErrNotFound) || (err == nil && code == nil):
		if directErr != nil && !errors.Is(directErr, ErrNotFound) {
			return nil, ReasonLookupFailed, directErr
		}
		return nil, ReasonNotFound, nil
	case err != nil:
		return nil, ReasonLookupFailed, err
	}
	return code, "", nil
}

func normalizeCurrency(currency string) string {
	return strings.ToLower(strings.TrimSpace(currency))
}

// currencyMismatch reports a fixed-amount coupon denominated in another currency.
func currencyMismatch(coupon Coupon, currency string) bool {
	if coupon.Kind() != KindFixed || coupon.Currency == "" || currency == "" {
		return false
	}
	return !strings.EqualFold(coupon.Currency, currency)
}

// resolveCoupon returns the embedded coupon or fetches it by reference.
func resolveCoupon(ctx context.Context, client Client, code *PromotionCode) (*Coupon, error) {
	if code.Coupon != nil {
		return code.Coupon, nil
	}
	if strings.TrimSpace(code.CouponID) == "" {
		return nil, errors.New("promotion code has no coupon")
	}
	coupon, err := client.GetCoupon(ctx, code.CouponID)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, errors.New("coupon lookup returned nothing")
	}
	return coupon, nil
}
