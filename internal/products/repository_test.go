package product

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nnaudio/storefront-api/pkg/db"
	"github.com/nnaudio/storefront-api/pkg/db/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func mustCreateTestProduct(t *testing.T, conn *gorm.DB) *models.Product {
	t.Helper()
	sale := decimal.RequireFromString("19.99")
	legacy := "price_sale_old"
	product := &models.Product{
		Name:              "Tape Saturator",
		Slug:              fmt.Sprintf("tape-%s", uuid.NewString()),
		Price:             decimal.RequireFromString("29.99"),
		SalePrice:         &sale,
		StripeSalePriceID: &legacy,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func TestRepositoryUpdateStripeIDs(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	product := mustCreateTestProduct(t, conn)

	found, err := repo.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("find product: %v", err)
	}
	if !found.Price.Equal(decimal.RequireFromString("29.99")) {
		t.Fatalf("unexpected price %s", found.Price)
	}

	if err := repo.UpdateStripeIDs(ctx, product.ID, "prod_1", "price_1"); err != nil {
		t.Fatalf("update stripe ids: %v", err)
	}

	found, err = repo.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if found.StripeProductID == nil || *found.StripeProductID != "prod_1" {
		t.Fatalf("unexpected stripe product id %v", found.StripeProductID)
	}
	if found.StripePriceID == nil || *found.StripePriceID != "price_1" {
		t.Fatalf("unexpected stripe price id %v", found.StripePriceID)
	}
	if found.StripeSalePriceID != nil {
		t.Fatalf("expected legacy sale price id to be cleared, got %q", *found.StripeSalePriceID)
	}
}

func TestRepositoryMissingProduct(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	if _, err := repo.FindByID(context.Background(), uuid.New()); !db.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := repo.UpdateStripeIDs(context.Background(), uuid.New(), "prod", "price"); !db.IsNotFound(err) {
		t.Fatalf("expected not found on update, got %v", err)
	}
}
