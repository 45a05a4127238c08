package middleware

import (
	"errors"
	"net/http"

	"github.com/nnaudio/storefront-api/api/responses"
	pkgerrors "github.com/nnaudio/storefront-api/pkg/errors"
	"github.com/nnaudio/storefront-api/pkg/logger"
)

var errNotAdmin = errors.New("caller is not an admin")

// RequireAdmin must run after RequireAuth.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserIDFromContext(r.Context()) == "" {
				responses.WriteFailure(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Not authenticated"))
				return
			}
			if !IsAdminFromContext(r.Context()) {
				responses.WriteFailure(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeForbidden, errNotAdmin, "admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
