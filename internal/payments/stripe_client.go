package payments

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/customer"
	"github.com/stripe/stripe-go/v84/paymentintent"
	"github.com/stripe/stripe-go/v84/paymentmethod"

	pkgstripe "github.com/nnaudio/storefront-api/pkg/stripe"
)

type stripeClientWrapper struct{}

// NewStripeClient adapts the Stripe PaymentIntent, PaymentMethod and Customer
// resources to Client.
func NewStripeClient(api *pkgstripe.Client) Client {
	if api == nil {
		return nil
	}
	return &stripeClientWrapper{}
}

func (w *stripeClientWrapper) CreatePaymentIntent(ctx context.Context, in IntentParams) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(in.AmountCents),
		Currency: stripe.String(in.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if in.CustomerID != "" {
		params.Customer = stripe.String(in.CustomerID)
	}
	if in.SetupFutureUsage != "" {
		params.SetupFutureUsage = stripe.String(in.SetupFutureUsage)
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	if in.IdempotencyKey != "" {
		params.SetIdempotencyKey(in.IdempotencyKey)
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}
	return fromStripeIntent(pi), nil
}

func (w *stripeClientWrapper) GetPaymentIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := paymentintent.Get(id, params)
	if err != nil {
		return nil, err
	}
	return fromStripeIntent(pi), nil
}

func (w *stripeClientWrapper) GetPaymentMethod(ctx context.Context, id string) (*PaymentMethod, error) {
	params := &stripe.PaymentMethodParams{}
	params.Context = ctx
	pm, err := paymentmethod.Get(id, params)
	if err != nil {
		return nil, err
	}
	out := &PaymentMethod{ID: pm.ID}
	if pm.Customer != nil {
		out.CustomerID = pm.Customer.ID
	}
	return out, nil
}

func (w *stripeClientWrapper) AttachPaymentMethod(ctx context.Context, paymentMethodID, customerID string) error {
	params := &stripe.PaymentMethodAttachParams{Customer: stripe.String(customerID)}
	params.Context = ctx
	_, err := paymentmethod.Attach(paymentMethodID, params)
	return err
}

func (w *stripeClientWrapper) GetCustomer(ctx context.Context, id string) (*BillingCustomer, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	c, err := customer.Get(id, params)
	if err != nil {
		return nil, err
	}
	out := &BillingCustomer{ID: c.ID, Deleted: c.Deleted}
	if c.InvoiceSettings != nil && c.InvoiceSettings.DefaultPaymentMethod != nil {
		out.DefaultPaymentMethodID = c.InvoiceSettings.DefaultPaymentMethod.ID
	}
	return out, nil
}

func (w *stripeClientWrapper) SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error {
	params := &stripe.CustomerParams{
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodID),
		},
	}
	params.Context = ctx
	_, err := customer.Update(customerID, params)
	return err
}

func fromStripeIntent(pi *stripe.PaymentIntent) *Intent {
	if pi == nil {
		return nil
	}
	out := &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountCents:  pi.Amount,
		Status:       string(pi.Status),
	}
	if pi.Customer != nil {
		out.CustomerID = pi.Customer.ID
	}
	return out
}
