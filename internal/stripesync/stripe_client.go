package stripesync

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/price"
	"github.com/stripe/stripe-go/v84/product"

	pkgstripe "github.com/nnaudio/storefront-api/pkg/stripe"
)

type stripeClientWrapper struct{}

// NewStripeClient adapts the Stripe product and price resources to Client.
func NewStripeClient(api *pkgstripe.Client) Client {
	if api == nil {
		return nil
	}
	return &stripeClientWrapper{}
}

func (w *stripeClientWrapper) CreateProduct(ctx context.Context, in ProductParams) (string, error) {
	params := &stripe.ProductParams{Name: stripe.String(in.Name)}
	applyProductParams(params, in)
	params.Context = ctx
	p, err := product.New(params)
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

func (w *stripeClientWrapper) UpdateProduct(ctx context.Context, id string, in ProductParams) (string, error) {
	params := &stripe.ProductParams{Name: stripe.String(in.Name)}
	applyProductParams(params, in)
	params.Context = ctx
	p, err := product.Update(id, params)
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

func (w *stripeClientWrapper) GetPrice(ctx context.Context, id string) (*Price, error) {
	params := &stripe.PriceParams{}
	params.Context = ctx
	p, err := price.Get(id, params)
	if err != nil {
		return nil, err
	}
	return fromStripePrice(p), nil
}

func (w *stripeClientWrapper) CreatePrice(ctx context.Context, in PriceParams) (*Price, error) {
	params := &stripe.PriceParams{
		Product:    stripe.String(in.ProductID),
		UnitAmount: stripe.Int64(in.UnitAmount),
		Currency:   stripe.String(in.Currency),
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx
	p, err := price.New(params)
	if err != nil {
		return nil, err
	}
	return fromStripePrice(p), nil
}

func (w *stripeClientWrapper) ArchivePrice(ctx context.Context, id string) error {
	params := &stripe.PriceParams{Active: stripe.Bool(false)}
	params.Context = ctx
	_, err := price.Update(id, params)
	return err
}

func applyProductParams(params *stripe.ProductParams, in ProductParams) {
	if in.Description != "" {
		params.Description = stripe.String(in.Description)
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
}

func fromStripePrice(p *stripe.Price) *Price {
	if p == nil {
		return nil
	}
	return &Price{ID: p.ID, UnitAmount: p.UnitAmount, Active: p.Active}
}
