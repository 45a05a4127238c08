package product

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nnaudio/storefront-api/internal/repo"
	"github.com/nnaudio/storefront-api/pkg/db/models"
)

// Repository persists catalog products.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.First(ctx, &product, id); err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateStripeIDs stores the synced processor ids and clears the legacy sale price id.
func (r *Repository) UpdateStripeIDs(ctx context.Context, id uuid.UUID, stripeProductID, stripePriceID string) error {
	return r.UpdateByID(ctx, &models.Product{}, id, map[string]any{
		"stripe_product_id":    repo.NullString(stripeProductID),
		"stripe_price_id":      repo.NullString(stripePriceID),
		"stripe_sale_price_id": nil,
	})
}
