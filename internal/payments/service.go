// Package payments prices a cart, applies promotions and the processor
// minimum, and creates the PaymentIntent that collects the charge.
package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nnaudio/storefront-api/internal/pricing"
	"github.com/nnaudio/storefront-api/internal/promotions"
	"github.com/nnaudio/storefront-api/pkg/db"
	pkgerrors "github.com/nnaudio/storefront-api/pkg/errors"
	"github.com/nnaudio/storefront-api/pkg/logger"
	"github.com/nnaudio/storefront-api/pkg/metrics"
	"github.com/nnaudio/storefront-api/pkg/money"
	pkgstripe "github.com/nnaudio/storefront-api/pkg/stripe"
)

// Service exposes checkout payment operations.
type Service interface {
	CreatePaymentIntent(ctx context.Context, in CreateIntentInput) (*IntentResult, error)
	AttachPaymentMethod(ctx context.Context, in AttachInput) (*AttachResult, error)
}

// ServiceParams groups the service dependencies. Customers and Profiles are
// optional; without them every intent is created without a customer.
type ServiceParams struct {
	Client             Client
	Promotions         PromotionResolver
	Customers          CustomerFinder
	Profiles           ProfileStore
	Metrics            *metrics.CheckoutMetrics
	Logger             *logger.Logger
	Currency           string
	MinimumChargeCents int64
}

type service struct {
	client     Client
	promotions PromotionResolver
	customers  CustomerFinder
	profiles   ProfileStore
	metrics    *metrics.CheckoutMetrics
	logg       *logger.Logger
	currency   string
	minimum    decimal.Decimal
}

// NewService validates params and builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Client == nil {
		return nil, errors.New("payment client required")
	}
	if params.Promotions == nil {
		return nil, errors.New("promotion resolver required")
	}
	currency := strings.ToLower(strings.TrimSpace(params.Currency))
	if currency == "" {
		return nil, errors.New("currency required")
	}
	if params.MinimumChargeCents < 0 {
		return nil, errors.New("minimum charge cannot be negative")
	}
	return &service{
		client:     params.Client,
		promotions: params.Promotions,
		customers:  params.Customers,
		profiles:   params.Profiles,
		metrics:    params.Metrics,
		logg:       params.Logger,
		currency:   currency,
		minimum:    money.FromCents(params.MinimumChargeCents),
	}, nil
}

func (s *service) CreatePaymentIntent(ctx context.Context, in CreateIntentInput) (*IntentResult, error) {
	if err := validateItems(in.Items); err != nil {
		return nil, err
	}
	s.warnSaleAboveList(ctx, in.Items)

	subtotal := pricing.Subtotal(in.Items)
	promo := s.promotions.Resolve(ctx, in.PromotionCode, subtotal)
	s.recordPromotion(ctx, promo)

	totals := pricing.NormalizeMinimum(subtotal, promo.Discount(), s.minimum)
	result := &IntentResult{Totals: totals, Promotion: promo, IsFreeOrder: totals.IsFreeOrder}

	if totals.IsFreeOrder {
		s.metrics.IntentOutcome(string(pricing.OutcomeFree))
		s.logInfo(ctx, "payment_intent.free_order", map[string]any{"subtotal": totals.Subtotal.StringFixed(2)})
		return result, nil
	}

	customerID, err := s.resolveCustomer(ctx, in)
	if err != nil {
		s.metrics.IntentOutcome("error")
		return nil, err
	}

	params := IntentParams{
		AmountCents:    totals.TotalCents,
		Currency:       s.currency,
		CustomerID:     customerID,
		Metadata:       buildMetadata(in, totals, promo),
		IdempotencyKey: strings.TrimSpace(in.IdempotencyKey),
	}
	if in.SavePaymentMethod && customerID != "" {
		params.SetupFutureUsage = SetupFutureUsageOffSession
	}

	intent, err := s.client.CreatePaymentIntent(ctx, params)
	if err != nil {
		s.metrics.IntentOutcome("error")
		if s.logg != nil {
			s.logg.Error(s.logg.WithField(ctx, "amount_cents", totals.TotalCents), "payment_intent.create_failed", err)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeProcessor, err, pkgstripe.ErrorMessage(err))
	}

	s.metrics.IntentOutcome(string(totals.Outcome))
	s.metrics.IntentAmount(totals.TotalCents)
	s.logInfo(ctx, "payment_intent.created", map[string]any{
		"payment_intent_id":      intent.ID,
		"amount_cents":           totals.TotalCents,
		"minimum_charge_applied": totals.MinimumApplied,
	})

	result.ClientSecret = intent.ClientSecret
	result.PaymentIntentID = intent.ID
	return result, nil
}

func validateItems(items []pricing.LineItem) error {
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	details := map[string]string{}
	for i, item := range items {
		if item.Quantity < 1 {
			details[fmt.Sprintf("items[%d].quantity", i)] = "must be at least 1"
		}
		if item.Price.IsNegative() {
			details[fmt.Sprintf("items[%d].price", i)] = "must be greater than or equal to 0"
		}
		if item.SalePrice != nil && item.SalePrice.IsNegative() {
			details[fmt.Sprintf("items[%d].sale_price", i)] = "must be greater than or equal to 0"
		}
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid cart items").WithDetails(details)
	}
	return nil
}

func (s *service) warnSaleAboveList(ctx context.Context, items []pricing.LineItem) {
	if s.logg == nil {
		return
	}
	for _, item := range items {
		if item.OnSale() && item.SalePrice.GreaterThan(item.Price) {
			s.logg.Warn(s.logg.WithField(ctx, "item_id", item.ID), "cart.sale_price_above_price")
		}
	}
}

func (s *service) recordPromotion(ctx context.Context, promo promotions.Result) {
	if applied, ok := promo.Applied(); ok {
		s.metrics.PromotionApplied()
		s.logInfo(ctx, "promotion.applied", map[string]any{
			"promotion_code":    applied.Code,
			"promotion_code_id": applied.PromotionCodeID,
			"discount":          applied.Discount.StringFixed(2),
		})
		return
	}

	ignored, ok := promo.Ignored()
	if !ok || ignored.Reason == promotions.ReasonNoCode {
		return
	}
	s.metrics.PromotionIgnored(string(ignored.Reason))
	if s.logg == nil {
		return
	}
	fields := map[string]any{
		"promotion_code": ignored.Token,
		"reason":         string(ignored.Reason),
	}
	if ignored.Err != nil {
		fields["error"] = ignored.Err.Error()
	}
	s.logg.Warn(s.logg.WithFields(ctx, fields), "promotion.ignored")
}

// resolveCustomer finds or creates the processor customer for signed-in
// shoppers and links it to their profile when unset.
func (s *service) resolveCustomer(ctx context.Context, in CreateIntentInput) (string, error) {
	email := strings.TrimSpace(in.Email)
	if s.customers == nil || email == "" {
		return "", nil
	}

	customerID, err := s.customers.FindOrCreate(ctx, email, in.UserID)
	if err != nil {
		return "", err
	}
	s.linkProfile(ctx, in.UserID, customerID)
	return customerID, nil
}

func (s *service) linkProfile(ctx context.Context, userID, customerID string) {
	if s.profiles == nil || customerID == "" {
		return
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return
	}

	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		if !db.IsNotFound(err) && s.logg != nil {
			s.logg.Error(s.logg.WithField(ctx, "user_id", userID), "profile.lookup_failed", err)
		}
		return
	}
	if profile.CustomerID != nil && *profile.CustomerID != "" {
		return
	}
	if err := s.profiles.SetCustomerID(ctx, id, customerID); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithField(ctx, "user_id", userID), "profile.link_customer_failed", err)
	}
}

func (s *service) logInfo(ctx context.Context, msg string, fields map[string]any) {
	if s.logg == nil {
		return
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), msg)
}
