package promotions

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by a Client when no promotion code matches.
var ErrNotFound = errors.New("promotion code not found")

// Client is the subset of the processor's promotion API the resolver needs.
type Client interface {
	GetPromotionCode(ctx context.Context, id string) (*PromotionCode, error)
	FindActiveByCode(ctx context.Context, code string) (*PromotionCode, error)
	GetCoupon(ctx context.Context, id string) (*Coupon, error)
}

// PromotionCode is a customer-facing code. Coupon is nil when the processor
// only returned a reference, in which case CouponID must be resolved.
type PromotionCode struct {
	ID       string
	Code     string
	Active   bool
	CouponID string
	Coupon   *Coupon
}

// Coupon carries the discount terms behind a promotion code.
type Coupon struct {
	ID             string
	Name           string
	Valid          bool
	PercentOff     float64
	AmountOffCents int64
	Currency       string
	MaxRedemptions int64
	TimesRedeemed  int64
	RedeemBy       *time.Time
}

// Kind reports how the coupon discounts.
func (c Coupon) Kind() Kind {
	switch {
	case c.PercentOff > 0:
		return KindPercent
	case c.AmountOffCents > 0:
		return KindFixed
	default:
		return KindNone
	}
}

type Kind string

const (
	KindPercent Kind = "percent"
	KindFixed   Kind = "fixed"
	KindNone    Kind = "none"
)

// Reason explains why a promotion was not applied.
type Reason string

const (
	ReasonNoCode           Reason = "no_code"
	ReasonNotFound         Reason = "not_found"
	ReasonLookupFailed     Reason = "lookup_failed"
	ReasonCouponInvalid    Reason = "coupon_invalid"
	ReasonCurrencyMismatch Reason = "currency_mismatch"
	ReasonNoDiscount       Reason = "no_discount"
)

// Applied describes a promotion that reduced the subtotal.
type Applied struct {
	PromotionCodeID string
	Code            string
	Coupon          Coupon
	Discount        decimal.Decimal
}

// Ignored describes a promotion that was skipped. Err holds the lookup failure, if any.
type Ignored struct {
	Token  string
	Reason Reason
	Err    error
}

// Result holds exactly one of Applied or Ignored.
type Result struct {
	applied *Applied
	ignored *Ignored
}

func appliedResult(a Applied) Result { return Result{applied: &a} }

func ignoredResult(token string, reason Reason, err error) Result {
	return Result{ignored: &Ignored{Token: token, Reason: reason, Err: err}}
}

func (r Result) Applied() (Applied, bool) {
	if r.applied == nil {
		return Applied{}, false
	}
	return *r.applied, true
}

func (r Result) Ignored() (Ignored, bool) {
	if r.ignored == nil {
		return Ignored{}, false
	}
	return *r.ignored, true
}

// Discount is the applied amount, zero when the promotion was ignored.
func (r Result) Discount() decimal.Decimal {
	if r.applied == nil {
		return decimal.Zero
	}
	return r.applied.Discount
}
