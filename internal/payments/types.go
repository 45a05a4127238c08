package payments

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nnaudio/storefront-api/internal/pricing"
	"github.com/nnaudio/storefront-api/internal/promotions"
	"github.com/nnaudio/storefront-api/pkg/db/models"
)

const (
	SetupFutureUsageOffSession = "off_session"
	AnonymousUserID            = "anonymous"
)

// Intent is the processor PaymentIntent as seen by checkout.
type Intent struct {
	ID           string
	ClientSecret string
	CustomerID   string
	AmountCents  int64
	Status       string
}

// IntentParams describes a PaymentIntent to create.
type IntentParams struct {
	AmountCents      int64
	Currency         string
	CustomerID       string
	SetupFutureUsage string
	Metadata         map[string]string
	IdempotencyKey   string
}

// PaymentMethod is a saved processor payment method.
type PaymentMethod struct {
	ID         string
	CustomerID string
}

// BillingCustomer is the customer billing state relevant to default methods.
type BillingCustomer struct {
	ID                     string
	Deleted                bool
	DefaultPaymentMethodID string
}

// Client is the processor surface used by checkout.
type Client interface {
	CreatePaymentIntent(ctx context.Context, params IntentParams) (*Intent, error)
	GetPaymentIntent(ctx context.Context, id string) (*Intent, error)
	GetPaymentMethod(ctx context.Context, id string) (*PaymentMethod, error)
	AttachPaymentMethod(ctx context.Context, paymentMethodID, customerID string) error
	GetCustomer(ctx context.Context, id string) (*BillingCustomer, error)
	SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error
}

// PromotionResolver prices an optional promotion token against a subtotal.
type PromotionResolver interface {
	Resolve(ctx context.Context, token string, subtotal decimal.Decimal) promotions.Result
}

// CustomerFinder maps a signed-in shopper to a processor customer.
type CustomerFinder interface {
	FindOrCreate(ctx context.Context, email, userID string) (string, error)
}

// ProfileStore reads and links shopper profiles.
type ProfileStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	SetCustomerID(ctx context.Context, id uuid.UUID, customerID string) error
}

// CreateIntentInput is a validated checkout request. UserID and Email are
// empty for anonymous shoppers.
type CreateIntentInput struct {
	Items             []pricing.LineItem
	PromotionCode     string
	SavePaymentMethod bool
	UserID            string
	Email             string
	IdempotencyKey    string
}

// IntentResult is the priced cart and, unless the order is free, the created intent.
type IntentResult struct {
	ClientSecret    string
	PaymentIntentID string
	IsFreeOrder     bool
	Totals          pricing.Totals
	Promotion       promotions.Result
}

// AttachInput identifies a payment method to save for the caller.
type AttachInput struct {
	PaymentIntentID string
	PaymentMethodID string
	UserID          string
}

// AttachResult reports what the attach flow did.
type AttachResult struct {
	AlreadyAttached bool
	DefaultSet      bool
	Message         string
}
