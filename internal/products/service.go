package product

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nnaudio/storefront-api/internal/stripesync"
	"github.com/nnaudio/storefront-api/pkg/db"
	"github.com/nnaudio/storefront-api/pkg/db/models"
	pkgerrors "github.com/nnaudio/storefront-api/pkg/errors"
	"github.com/nnaudio/storefront-api/pkg/logger"
	"github.com/nnaudio/storefront-api/pkg/metrics"
)

// Service exposes admin product operations.
type Service interface {
	SyncToStripe(ctx context.Context, id uuid.UUID) (*stripesync.Result, error)
}

type productStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpdateStripeIDs(ctx context.Context, id uuid.UUID, stripeProductID, stripePriceID string) error
}

type syncer interface {
	Sync(ctx context.Context, in stripesync.Input) stripesync.Result
}

type service struct {
	repo    productStore
	syncer  syncer
	metrics *metrics.CheckoutMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService wires the product repository to the synchronizer.
func NewService(repo productStore, sync syncer, m *metrics.CheckoutMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New("product repository required")
	}
	if sync == nil {
		return nil, errors.New("stripe synchronizer required")
	}
	return &service{repo: repo, syncer: sync, metrics: m, logg: logg, now: time.Now}, nil
}

func (s *service) SyncToStripe(ctx context.Context, id uuid.UUID) (*stripesync.Result, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	if strings.TrimSpace(product.Name) == "" || product.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Product name and price are required")
	}
	if product.SalePrice != nil && product.SalePrice.GreaterThan(product.Price) && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "product_id", product.ID.String()), "product.sale_price_above_price")
	}

	started := s.now()
	result := s.syncer.Sync(ctx, stripesync.Input{
		ProductID:           product.ID.String(),
		Name:                product.Name,
		Description:         product.SyncDescription(),
		Price:               product.Price,
		SalePrice:           product.SalePrice,
		ExistingProductID:   deref(product.StripeProductID),
		ExistingPriceID:     deref(product.StripePriceID),
		ExistingSalePriceID: deref(product.StripeSalePriceID),
	})
	s.metrics.SyncResult(result.Success, s.now().Sub(started))

	if !result.Success {
		return nil, pkgerrors.New(pkgerrors.CodeProcessor, result.Error)
	}

	if err := s.repo.UpdateStripeIDs(ctx, product.ID, result.StripeProductID, result.StripePriceID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Failed to update product with Stripe IDs")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"product_id":        product.ID.String(),
			"stripe_product_id": result.StripeProductID,
			"stripe_price_id":   result.StripePriceID,
		}), "product.stripe_synced")
	}
	return &result, nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
