package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nnaudio/storefront-api/api/controllers"
	"github.com/nnaudio/storefront-api/api/middleware"
	"github.com/nnaudio/storefront-api/internal/payments"
	product "github.com/nnaudio/storefront-api/internal/products"
	"github.com/nnaudio/storefront-api/pkg/config"
	"github.com/nnaudio/storefront-api/pkg/db"
	"github.com/nnaudio/storefront-api/pkg/logger"
	pkgredis "github.com/nnaudio/storefront-api/pkg/redis"
)

// RedisStore is the redis surface the router needs. It is nil when redis is
// not configured, which disables idempotency replay and rate limiting.
type RedisStore interface {
	pkgredis.IdempotencyStore
	pkgredis.RateLimiter
	pkgredis.Pinger
}

// Dependencies groups everything the router wires into handlers.
type Dependencies struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           db.Pinger
	Redis        RedisStore
	Payments     payments.Service
	PromoCodes   controllers.PromoCodeValidator
	Products     product.Service
	MetricsRoute http.Handler
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.AllowedOrigins()),
	)

	var (
		idempotencyStore pkgredis.IdempotencyStore
		limiter          pkgredis.RateLimiter
		readyChecks      []controllers.Dependency
	)
	if deps.DB != nil {
		readyChecks = append(readyChecks, controllers.Dependency{Name: "database", Ping: deps.DB.Ping})
	}
	if deps.Redis != nil {
		idempotencyStore = deps.Redis
		limiter = deps.Redis
		readyChecks = append(readyChecks, controllers.Dependency{Name: "redis", Ping: deps.Redis.Ping})
	}

	promoPolicy := middleware.NewRateLimitPolicy(
		"promo-validate",
		int64(cfg.Checkout.PromoRateLimit),
		cfg.Checkout.PromoRateWindow,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readyChecks...))
	})

	if deps.MetricsRoute != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsRoute)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.Auth, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Post("/payment-intent", controllers.CreatePaymentIntent(deps.Payments, logg))

		r.With(middleware.RequireAuth(cfg.Auth, logg)).
			Post("/payment-intent/{id}/attach-payment-method", controllers.AttachPaymentMethod(deps.Payments, logg))

		r.With(middleware.RateLimit(promoPolicy, limiter, logg)).
			Post("/promo-code/validate", controllers.ValidatePromoCode(deps.PromoCodes, logg))

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAuth(cfg.Auth, logg))
			r.Use(middleware.RequireAdmin(logg))
			r.Post("/products/{id}/stripe-sync", controllers.AdminSyncProduct(deps.Products, logg))
		})
	})

	return r
}
