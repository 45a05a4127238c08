// Package stripesync mirrors catalog products onto processor products and
// prices, creating or updating them in place.
package stripesync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nnaudio/storefront-api/internal/pricing"
	"github.com/nnaudio/storefront-api/pkg/logger"
	"github.com/nnaudio/storefront-api/pkg/money"
	pkgstripe "github.com/nnaudio/storefront-api/pkg/stripe"
)

const defaultSyncError = "Failed to sync product to Stripe"

// Synchronizer performs the create-or-update flow for one product at a time.
type Synchronizer struct {
	client   Client
	currency string
	logg     *logger.Logger
}

// NewSynchronizer builds a Synchronizer charging in currency.
func NewSynchronizer(client Client, currency string, logg *logger.Logger) (*Synchronizer, error) {
	if client == nil {
		return nil, errors.New("stripe sync client is required")
	}
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		return nil, errors.New("currency is required")
	}
	return &Synchronizer{client: client, currency: currency, logg: logg}, nil
}

// Sync pushes in to the processor. It never panics; every failure is
// reported through Result.
func (s *Synchronizer) Sync(ctx context.Context, in Input) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic during product sync: %v", r)
			s.logError(ctx, in, err)
			result = Result{Success: false, Error: defaultSyncError}
		}
	}()

	productID, priceID, err := s.sync(ctx, in)
	if err != nil {
		s.logError(ctx, in, err)
		msg := pkgstripe.ErrorMessage(err)
		if strings.TrimSpace(msg) == "" {
			msg = defaultSyncError
		}
		return Result{Success: false, Error: msg}
	}
	return Result{Success: true, StripeProductID: productID, StripePriceID: priceID}
}

func (s *Synchronizer) sync(ctx context.Context, in Input) (string, string, error) {
	productParams := ProductParams{
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		Metadata:    map[string]string{"product_id": in.ProductID},
	}

	var (
		productID string
		err       error
	)
	if in.ExistingProductID != "" {
		productID, err = s.client.UpdateProduct(ctx, in.ExistingProductID, productParams)
	} else {
		productID, err = s.client.CreateProduct(ctx, productParams)
	}
	if err != nil {
		return "", "", err
	}

	line := pricing.LineItem{Price: in.Price, SalePrice: in.SalePrice}
	amount := money.FromDollars(line.EffectivePrice())
	priceType := PriceTypeRegular
	if line.OnSale() {
		priceType = PriceTypeSale
	}

	priceID, err := s.ensurePrice(ctx, in, productID, amount, priceType)
	if err != nil {
		return "", "", err
	}

	if in.ExistingSalePriceID != "" && in.ExistingSalePriceID != priceID {
		if err := s.client.ArchivePrice(ctx, in.ExistingSalePriceID); err != nil && s.logg != nil {
			s.logg.Debug(s.logg.WithField(ctx, "stripe_price_id", in.ExistingSalePriceID), "stripe.sync.legacy_sale_price_archive_skipped")
		}
	}

	return productID, priceID, nil
}

func (s *Synchronizer) ensurePrice(ctx context.Context, in Input, productID string, amount int64, priceType string) (string, error) {
	if in.ExistingPriceID != "" {
		existing, err := s.client.GetPrice(ctx, in.ExistingPriceID)
		if err != nil {
			return "", err
		}
		if existing != nil && existing.Active && existing.UnitAmount == amount {
			return existing.ID, nil
		}
		// an archived price cannot be sold, so it is replaced even when the amount matches
		if existing != nil && existing.Active {
			if err := s.client.ArchivePrice(ctx, in.ExistingPriceID); err != nil {
				return "", err
			}
		}
	}

	created, err := s.client.CreatePrice(ctx, PriceParams{
		ProductID:  productID,
		UnitAmount: amount,
		Currency:   s.currency,
		Metadata: map[string]string{
			"product_id": in.ProductID,
			"price_type": priceType,
		},
	})
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

func (s *Synchronizer) logError(ctx context.Context, in Input, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Error(s.logg.WithField(ctx, "product_id", in.ProductID), "stripe.sync.failed", err)
}
