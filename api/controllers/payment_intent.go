package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/nnaudio/storefront-api/api/middleware"
	"github.com/nnaudio/storefront-api/api/responses"
	"github.com/nnaudio/storefront-api/api/validators"
	"github.com/nnaudio/storefront-api/internal/payments"
	"github.com/nnaudio/storefront-api/internal/pricing"
	pkgerrors "github.com/nnaudio/storefront-api/pkg/errors"
	"github.com/nnaudio/storefront-api/pkg/logger"
	"github.com/nnaudio/storefront-api/pkg/money"
)

type cartItemRequest struct {
	ID            string           `json:"id" validate:"required"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price" validate:"gte=0"`
	SalePrice     *decimal.Decimal `json:"sale_price,omitempty" validate:"omitempty,gte=0"`
	Quantity      int              `json:"quantity" validate:"min=1"`
	StripePriceID *string          `json:"stripe_price_id,omitempty"`
}

type paymentIntentRequest struct {
	Items             []cartItemRequest `json:"items" validate:"dive"`
	PromotionCodeID   string            `json:"promotionCodeId,omitempty"`
	SavePaymentMethod bool              `json:"savePaymentMethod,omitempty"`
}

type paymentIntentResponse struct {
	Success         bool    `json:"success"`
	ClientSecret    string  `json:"clientSecret,omitempty"`
	PaymentIntentID string  `json:"paymentIntentId,omitempty"`
	IsFreeOrder     bool    `json:"isFreeOrder"`
	Amount          float64 `json:"amount"`
}

func (p paymentIntentRequest) lineItems() []pricing.LineItem {
	items := make([]pricing.LineItem, 0, len(p.Items))
	for _, item := range p.Items {
		line := pricing.LineItem{
			ID:        strings.TrimSpace(item.ID),
			Name:      validators.SanitizeString(item.Name, 200),
			Price:     item.Price,
			SalePrice: item.SalePrice,
			Quantity:  item.Quantity,
		}
		if item.StripePriceID != nil {
			line.StripePriceID = strings.TrimSpace(*item.StripePriceID)
		}
		items = append(items, line)
	}
	return items
}

// CreatePaymentIntent prices the cart and opens a PaymentIntent for it. Free
// orders return without an intent.
func CreatePaymentIntent(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		var payload paymentIntentRequest
		if err := validators.DecodeJSONBodyLenient(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreatePaymentIntent(r.Context(), payments.CreateIntentInput{
			Items:             payload.lineItems(),
			PromotionCode:     strings.TrimSpace(payload.PromotionCodeID),
			SavePaymentMethod: payload.SavePaymentMethod,
			UserID:            middleware.UserIDFromContext(r.Context()),
			Email:             middleware.EmailFromContext(r.Context()),
			IdempotencyKey:    r.Header.Get("Idempotency-Key"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, paymentIntentResponse{
			Success:         true,
			ClientSecret:    result.ClientSecret,
			PaymentIntentID: result.PaymentIntentID,
			IsFreeOrder:     result.IsFreeOrder,
			Amount:          money.Float(result.Totals.Total),
		})
	}
}

type attachPaymentMethodRequest struct {
	PaymentMethodID string `json:"paymentMethodId"`
}

type attachPaymentMethodResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AttachPaymentMethod saves the intent's payment method to the caller's customer.
func AttachPaymentMethod(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteFailure(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		var payload attachPaymentMethodRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteFailure(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AttachPaymentMethod(r.Context(), payments.AttachInput{
			PaymentIntentID: strings.TrimSpace(chi.URLParam(r, "id")),
			PaymentMethodID: strings.TrimSpace(payload.PaymentMethodID),
			UserID:          middleware.UserIDFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteFailure(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, attachPaymentMethodResponse{Success: true, Message: result.Message})
	}
}
