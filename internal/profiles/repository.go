package profiles

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nnaudio/storefront-api/internal/repo"
	"github.com/nnaudio/storefront-api/pkg/db/models"
)

// Repository exposes profile persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a profiles repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindByID loads a profile by the auth user id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.First(ctx, &profile, id); err != nil {
		return nil, err
	}
	return &profile, nil
}

// SetCustomerID links the profile to a processor customer. An empty id unlinks it.
func (r *Repository) SetCustomerID(ctx context.Context, id uuid.UUID, customerID string) error {
	return r.UpdateByID(ctx, &models.Profile{}, id, map[string]any{"customer_id": repo.NullString(customerID)})
}
