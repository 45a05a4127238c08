package promotions

import (
	"context"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/coupon"
	"github.com/stripe/stripe-go/v84/promotioncode"

	pkgstripe "github.com/nnaudio/storefront-api/pkg/stripe"
)

type stripeClientWrapper struct{}

// NewStripeClient adapts the Stripe promotion code and coupon resources to Client.
func NewStripeClient(api *pkgstripe.Client) Client {
	if api == nil {
		return nil
	}
	return &stripeClientWrapper{}
}

func (w *stripeClientWrapper) GetPromotionCode(ctx context.Context, id string) (*PromotionCode, error) {
	params := &stripe.PromotionCodeParams{}
	params.Context = ctx
	params.AddExpand("promotion.coupon")
	pc, err := promotioncode.Get(id, params)
	if err != nil {
		if pkgstripe.IsResourceMissing(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return fromStripePromotionCode(pc), nil
}

func (w *stripeClientWrapper) FindActiveByCode(ctx context.Context, code string) (*PromotionCode, error) {
	params := &stripe.PromotionCodeListParams{
		Code:   stripe.String(code),
		Active: stripe.Bool(true),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)
	params.AddExpand("data.promotion.coupon")

	iter := promotioncode.List(params)
	if iter.Next() {
		return fromStripePromotionCode(iter.PromotionCode()), nil
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return nil, ErrNotFound
}

func (w *stripeClientWrapper) GetCoupon(ctx context.Context, id string) (*Coupon, error) {
	params := &stripe.CouponParams{}
	params.Context = ctx
	c, err := coupon.Get(id, params)
	if err != nil {
		return nil, err
	}
	mapped := fromStripeCoupon(c)
	return &mapped, nil
}

func fromStripePromotionCode(pc *stripe.PromotionCode) *PromotionCode {
	if pc == nil {
		return nil
	}
	out := &PromotionCode{
		ID:     pc.ID,
		Code:   pc.Code,
		Active: pc.Active,
	}
	if pc.Promotion != nil && pc.Promotion.Coupon != nil {
		ref := pc.Promotion.Coupon
		out.CouponID = ref.ID
		// unexpanded references only carry the id
		if ref.Object != "" {
			mapped := fromStripeCoupon(ref)
			out.Coupon = &mapped
		}
	}
	return out
}

func fromStripeCoupon(c *stripe.Coupon) Coupon {
	out := Coupon{
		ID:             c.ID,
		Name:           c.Name,
		Valid:          c.Valid,
		PercentOff:     c.PercentOff,
		AmountOffCents: c.AmountOff,
		Currency:       strings.ToLower(string(c.Currency)),
		MaxRedemptions: c.MaxRedemptions,
		TimesRedeemed:  c.TimesRedeemed,
	}
	if c.RedeemBy > 0 {
		redeemBy := time.Unix(c.RedeemBy, 0).UTC()
		out.RedeemBy = &redeemBy
	}
	return out
}
