package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog listing mirrored to a Stripe product and price.
type Product struct {
	ID                uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Name              string           `gorm:"column:name;not null"`
	Slug              string           `gorm:"column:slug;not null;uniqueIndex"`
	Description       *string          `gorm:"column:description"`
	ShortDescription  *string          `gorm:"column:short_description"`
	Price             decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null"`
	SalePrice         *decimal.Decimal `gorm:"column:sale_price;type:numeric(10,2)"`
	StripeProductID   *string          `gorm:"column:stripe_product_id"`
	StripePriceID     *string          `gorm:"column:stripe_price_id"`
	StripeSalePriceID *string          `gorm:"column:stripe_sale_price_id"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }

// BeforeCreate assigns an id when the caller did not.
func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// SyncDescription is the text mirrored to the processor, preferring the long form.
func (p Product) SyncDescription() string {
	if p.Description != nil && strings.TrimSpace(*p.Description) != "" {
		return strings.TrimSpace(*p.Description)
	}
	if p.ShortDescription != nil {
		return strings.TrimSpace(*p.ShortDescription)
	}
	return ""
}
