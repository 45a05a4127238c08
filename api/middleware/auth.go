package middleware

import (
	"context"
	"net/http"

	"github.com/nnaudio/storefront-api/api/responses"
	"github.com/nnaudio/storefront-api/api/validators"
	pkgauth "github.com/nnaudio/storefront-api/pkg/auth"
	"github.com/nnaudio/storefront-api/pkg/config"
	pkgerrors "github.com/nnaudio/storefront-api/pkg/errors"
	"github.com/nnaudio/storefront-api/pkg/logger"
)

// OptionalAuth seeds the caller when a valid bearer token is sent. Missing or
// invalid tokens continue as an anonymous request.
func OptionalAuth(cfg config.AuthConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := validators.BearerToken(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := pkgauth.ParseSupabaseToken(cfg, token)
			if err != nil {
				if logg != nil {
					logg.Warn(logg.WithField(r.Context(), "reason", err.Error()), "auth.optional_token_ignored")
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r, cfg, claims, logg)))
		})
	}
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(cfg config.AuthConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserIDFromContext(r.Context()) != "" {
				next.ServeHTTP(w, r)
				return
			}

			token, err := validators.BearerToken(r)
			if err != nil {
				responses.WriteFailure(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Not authenticated"))
				return
			}

			claims, err := pkgauth.ParseSupabaseToken(cfg, token)
			if err != nil {
				responses.WriteFailure(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r, cfg, claims, logg)))
		})
	}
}

func withClaims(r *http.Request, cfg config.AuthConfig, claims *pkgauth.Claims, logg *logger.Logger) context.Context {
	isAdmin := claims.IsAdmin(cfg)
	ctx := WithCaller(r.Context(), claims.UserID(), claims.Email, claims.Role, isAdmin)
	noteCaller(ctx, claims.UserID())
	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{
			"user_id":  claims.UserID(),
			"is_admin": isAdmin,
		})
	}
	return ctx
}
