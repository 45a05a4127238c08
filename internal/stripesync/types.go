package stripesync

import (
	"context"

	"github.com/shopspring/decimal"
)

const (
	PriceTypeSale    = "sale"
	PriceTypeRegular = "regular"
)

// ProductParams is the catalog data mirrored onto the processor product.
type ProductParams struct {
	Name        string
	Description string
	Metadata    map[string]string
}

// Price is the subset of a processor price the synchronizer compares.
type Price struct {
	ID         string
	UnitAmount int64
	Active     bool
}

// PriceParams describes a new one-time price.
type PriceParams struct {
	ProductID  string
	UnitAmount int64
	Currency   string
	Metadata   map[string]string
}

// Client is the processor surface used by the synchronizer.
type Client interface {
	CreateProduct(ctx context.Context, params ProductParams) (string, error)
	UpdateProduct(ctx context.Context, id string, params ProductParams) (string, error)
	GetPrice(ctx context.Context, id string) (*Price, error)
	CreatePrice(ctx context.Context, params PriceParams) (*Price, error)
	ArchivePrice(ctx context.Context, id string) error
}

// Input is a catalog product and the processor ids it was last synced with.
type Input struct {
	ProductID   string
	Name        string
	Description string
	Price       decimal.Decimal
	SalePrice   *decimal.Decimal

	ExistingProductID   string
	ExistingPriceID     string
	ExistingSalePriceID string
}

// Result reports the outcome of a sync. Error is set only when Success is false.
type Result struct {
	Success         bool   `json:"success"`
	StripeProductID string `json:"stripe_product_id,omitempty"`
	StripePriceID   string `json:"stripe_price_id,omitempty"`
	Error           string `json:"error,omitempty"`
}
