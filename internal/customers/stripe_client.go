package customers

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/customer"

	pkgstripe "github.com/nnaudio/storefront-api/pkg/stripe"
)

type stripeClientWrapper struct{}

// NewStripeClient adapts the Stripe customer resource to Client.
func NewStripeClient(api *pkgstripe.Client) Client {
	if api == nil {
		return nil
	}
	return &stripeClientWrapper{}
}

func (w *stripeClientWrapper) ListByEmail(ctx context.Context, email string, limit int64) ([]Customer, error) {
	params := &stripe.CustomerListParams{Email: stripe.String(email)}
	params.Context = ctx
	params.Limit = stripe.Int64(limit)
	params.Single = true

	iter := customer.List(params)
	out := make([]Customer, 0, limit)
	for iter.Next() {
		c := iter.Customer()
		out = append(out, Customer{ID: c.ID, Email: c.Email})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (w *stripeClientWrapper) Create(ctx context.Context, in CreateParams) (*Customer, error) {
	params := &stripe.CustomerParams{Email: stripe.String(in.Email)}
	params.Context = ctx
	if in.UserID != "" {
		params.AddMetadata("user_id", in.UserID)
	}
	if in.IdempotencyKey != "" {
		params.SetIdempotencyKey(in.IdempotencyKey)
	}
	c, err := customer.New(params)
	if err != nil {
		return nil, err
	}
	return &Customer{ID: c.ID, Email: c.Email}, nil
}
