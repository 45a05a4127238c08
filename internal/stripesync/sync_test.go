package stripesync

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"
)

type stubClient struct {
	createdProducts []ProductParams
	updatedProducts map[string]ProductParams
	productErr      error

	prices      map[string]*Price
	getPriceErr error

	createdPrices  []PriceParams
	createPriceErr error

	archived   []string
	archiveErr map[string]error

	panicOnGet bool
}

func newStubClient() *stubClient {
	return &stubClient{
		updatedProducts: map[string]ProductParams{},
		prices:          map[string]*Price{},
		archiveErr:      map[string]error{},
	}
}

func (s *stubClient) CreateProduct(ctx context.Context, params ProductParams) (string, error) {
	if s.productErr != nil {
		return "", s.productErr
	}
	s.createdProducts = append(s.createdProducts, params)
	return "prod_new", nil
}

func (s *stubClient) UpdateProduct(ctx context.Context, id string, params ProductParams) (string, error) {
	if s.productErr != nil {
		return "", s.productErr
	}
	s.updatedProducts[id] = params
	return id, nil
}

func (s *stubClient) GetPrice(ctx context.Context, id string) (*Price, error) {
	if s.panicOnGet {
		panic("unexpected nil response")
	}
	if s.getPriceErr != nil {
		return nil, s.getPriceErr
	}
	return s.prices[id], nil
}

func (s *stubClient) CreatePrice(ctx context.Context, params PriceParams) (*Price, error) {
	if s.createPriceErr != nil {
		return nil, s.createPriceErr
	}
	s.createdPrices = append(s.createdPrices, params)
	return &Price{ID: "price_new", UnitAmount: params.UnitAmount, Active: true}, nil
}

func (s *stubClient) ArchivePrice(ctx context.Context, id string) error {
	s.archived = append(s.archived, id)
	return s.archiveErr[id]
}

func newTestSynchronizer(t *testing.T, client Client) *Synchronizer {
	t.Helper()
	s, err := NewSynchronizer(client, "USD", nil)
	require.NoError(t, err)
	return s
}

func decimalPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestSyncCreatesProductAndPrice(t *testing.T) {
	client := newStubClient()
	result := newTestSynchronizer(t, client).Sync(context.Background(), Input{
		ProductID:   "p-1",
		Name:        "Tape Saturator",
		Description: " Warm analog tape ",
		Price:       decimal.RequireFromString("29.99"),
	})

	require.True(t, result.Success, result.Error)
	assert.Equal(t, "prod_new", result.StripeProductID)
	assert.Equal(t, "price_new", result.StripePriceID)

	require.Len(t, client.createdProducts, 1)
	assert.Equal(t, "Warm analog tape", client.createdProducts[0].Description)
	assert.Equal(t, "p-1", client.createdProducts[0].Metadata["product_id"])

	require.Len(t, client.createdPrices, 1)
	created := client.createdPrices[0]
	assert.Equal(t, int64(2999), created.UnitAmount)
	assert.Equal(t, "usd", created.Currency)
	assert.Equal(t, "prod_new", created.ProductID)
	assert.Equal(t, PriceTypeRegular, created.Metadata["price_type"])
	assert.Empty(t, client.archived)
}

func TestSyncReusesPriceWhenAmountUnchanged(t *testing.T) {
	client := newStubClient()
	client.prices["price_old"] = &Price{ID: "price_old", UnitAmount: 1999, Active: true}

	result := newTestSynchronizer(t, client).Sync(context.Background(), Input{
		ProductID:         "p-1",
		Name:              "Reverb",
		Price:             decimal.RequireFromString("29.99"),
		SalePrice:         decimalPtr("19.99"),
		ExistingProductID: "prod_1",
		ExistingPriceID:   "price_old",
	})

	require.True(t, result.Success)
	assert.Equal(t, "prod_1", result.StripeProductID)
	assert.Equal(t, "price_old", result.StripePriceID)
	assert.Contains(t, client.updatedProducts, "prod_1")
	assert.Empty(t, client.createdPrices)
	assert.Empty(t, client.archived)
}

func TestSyncReplacesChangedPriceAndArchivesLegacySalePrice(t *testing.T) {
	client := newStubClient()
	client.prices["price_old"] = &Price{ID: "price_old", UnitAmount: 2999, Active: true}
	client.archiveErr["price_sale"] = errors.New("no such price")

	result := newTestSynchronizer(t, client).Sync(context.Background(), Input{
		ProductID:           "p-2",
		Name:                "Compressor",
		Price:               decimal.RequireFromString("29.99"),
		SalePrice:           decimalPtr("14.50"),
		ExistingProductID:   "prod_2",
		ExistingPriceID:     "price_old",
		ExistingSalePriceID: "price_sale",
	})

	require.True(t, result.Success, "legacy archive failures are ignored")
	assert.Equal(t, "price_new", result.StripePriceID)
	assert.Equal(t, []string{"price_old", "price_sale"}, client.archived)
	require.Len(t, client.createdPrices, 1)
	assert.Equal(t, int64(1450), client.createdPrices[0].UnitAmount)
	assert.Equal(t, PriceTypeSale, client.createdPrices[0].Metadata["price_type"])
}

func TestSyncReplacesArchivedPriceWithSameAmount(t *testing.T) {
	client := newStubClient()
	client.prices["price_old"] = &Price{ID: "price_old", UnitAmount: 2999, Active: false}

	result := newTestSynchronizer(t, client).Sync(context.Background(), Input{
		ProductID:         "p-6",
		Name:              "Chorus",
		Price:             decimal.RequireFromString("29.99"),
		ExistingProductID: "prod_1",
		ExistingPriceID:   "price_old",
	})

	require.True(t, result.Success, result.Error)
	assert.Equal(t, "price_new", result.StripePriceID)
	require.Len(t, client.createdPrices, 1)
	assert.Equal(t, int64(2999), client.createdPrices[0].UnitAmount)
	assert.Empty(t, client.archived, "an inactive price is not archived again")
}

func TestSyncZeroSalePriceFallsBackToRegular(t *testing.T) {
	client := newStubClient()
	result := newTestSynchronizer(t, client).Sync(context.Background(), Input{
		ProductID: "p-3",
		Name:      "Delay",
		Price:     decimal.RequireFromString("10"),
		SalePrice: decimalPtr("0"),
	})

	require.True(t, result.Success)
	assert.Equal(t, int64(1000), client.createdPrices[0].UnitAmount)
	assert.Equal(t, PriceTypeRegular, client.createdPrices[0].Metadata["price_type"])
}

func TestSyncReportsProcessorMessage(t *testing.T) {
	client := newStubClient()
	client.productErr = &stripe.Error{Msg: "No such product: prod_gone", Code: stripe.ErrorCodeResourceMissing}

	result := newTestSynchronizer(t, client).Sync(context.Background(), Input{
		ProductID:         "p-4",
		Name:              "Gate",
		Price:             decimal.RequireFromString("5"),
		ExistingProductID: "prod_gone",
	})

	assert.False(t, result.Success)
	assert.Equal(t, "No such product: prod_gone", result.Error)
	assert.Empty(t, result.StripeProductID)
}

func TestSyncFailsWhenOldPriceCannotBeArchived(t *testing.T) {
	client := newStubClient()
	client.prices["price_old"] = &Price{ID: "price_old", UnitAmount: 100, Active: true}
	client.archiveErr["price_old"] = errors.New("archive refused")

	result := newTestSynchronizer(t, client).Sync(context.Background(), Input{
		ProductID:         "p-5",
		Name:              "EQ",
		Price:             decimal.RequireFromString("2"),
		ExistingProductID: "prod_5",
		ExistingPriceID:   "price_old",
	})

	assert.False(t, result.Success)
	assert.Equal(t, "archive refused", result.Error)
	assert.Empty(t, client.createdPrices)
}

func TestSyncRecoversFromPanics(t *testing.T) {
	client := newStubClient()
	client.panicOnGet = true

	var result Result
	require.NotPanics(t, func() {
		result = newTestSynchronizer(t, client).Sync(context.Background(), Input{
			ProductID:         "p-6",
			Name:              "Chorus",
			Price:             decimal.RequireFromString("3"),
			ExistingProductID: "prod_6",
			ExistingPriceID:   "price_6",
		})
	})
	assert.False(t, result.Success)
	assert.Equal(t, defaultSyncError, result.Error)
}

func TestNewSynchronizerValidatesDependencies(t *testing.T) {
	_, err := NewSynchronizer(nil, "usd", nil)
	assert.Error(t, err)
	_, err = NewSynchronizer(newStubClient(), " ", nil)
	assert.Error(t, err)
}
