package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nnaudio/storefront-api/api/responses"
	product "github.com/nnaudio/storefront-api/internal/products"
	pkgerrors "github.com/nnaudio/storefront-api/pkg/errors"
	"github.com/nnaudio/storefront-api/pkg/logger"
)

// AdminSyncProduct pushes a catalog product and its effective price to Stripe.
func AdminSyncProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteFailure(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
		if err != nil {
			responses.WriteFailure(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found"))
			return
		}

		result, err := svc.SyncToStripe(r.Context(), productID)
		if err != nil {
			responses.WriteFailure(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
