package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/nnaudio/storefront-api/api/routes"
	"github.com/nnaudio/storefront-api/internal/customers"
	"github.com/nnaudio/storefront-api/internal/payments"
	product "github.com/nnaudio/storefront-api/internal/products"
	"github.com/nnaudio/storefront-api/internal/profiles"
	"github.com/nnaudio/storefront-api/internal/promotions"
	"github.com/nnaudio/storefront-api/internal/stripesync"
	"github.com/nnaudio/storefront-api/pkg/config"
	"github.com/nnaudio/storefront-api/pkg/db"
	"github.com/nnaudio/storefront-api/pkg/logger"
	"github.com/nnaudio/storefront-api/pkg/metrics"
	"github.com/nnaudio/storefront-api/pkg/migrate"
	"github.com/nnaudio/storefront-api/pkg/redis"
	pkgstripe "github.com/nnaudio/storefront-api/pkg/stripe"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Console:     cfg.App.ConsoleLogs(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return err
	}
	closers := []func() error{dbClient.Close}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return multierr.Append(err, dbClient.Close())
	}

	var redisStore routes.RedisStore
	if cfg.Redis.Enabled() {
		redisClient, redisErr := redis.New(ctx, cfg.Redis, logg)
		if redisErr != nil {
			return multierr.Append(redisErr, dbClient.Close())
		}
		redisStore = redisClient
		closers = append(closers, redisClient.Close)
	} else {
		logg.Warn(ctx, "redis not configured, idempotency and rate limits disabled")
	}

	defer func() {
		var closeErr error
		for _, closeFn := range closers {
			closeErr = multierr.Append(closeErr, closeFn())
		}
		if closeErr != nil {
			logg.Error(context.Background(), "error closing dependencies", closeErr)
		}
	}()

	stripeClient, err := pkgstripe.NewClient(ctx, cfg.Stripe, logg)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	handler, err := buildRouter(cfg, logg, dbClient, redisStore, stripeClient, checkoutMetrics, registry)
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":        cfg.App.Env,
		"addr":       addr,
		"stripe_env": stripeClient.Environment(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(serverCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(serverCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisStore routes.RedisStore,
	stripeClient *pkgstripe.Client,
	checkoutMetrics *metrics.CheckoutMetrics,
	registry *prometheus.Registry,
) (http.Handler, error) {
	promotionClient := promotions.NewStripeClient(stripeClient)
	resolver, err := promotions.NewResolver(promotionClient, cfg.Checkout.Currency)
	if err != nil {
		return nil, err
	}
	validator, err := promotions.NewValidator(promotionClient, cfg.Checkout.Currency)
	if err != nil {
		return nil, err
	}

	customerService, err := customers.NewService(customers.NewStripeClient(stripeClient), logg.Component("customers"))
	if err != nil {
		return nil, err
	}

	paymentService, err := payments.NewService(payments.ServiceParams{
		Client:             payments.NewStripeClient(stripeClient),
		Promotions:         resolver,
		Customers:          customerService,
		Profiles:           profiles.NewRepository(dbClient.DB()),
		Metrics:            checkoutMetrics,
		Logger:             logg.Component("payments"),
		Currency:           cfg.Checkout.Currency,
		MinimumChargeCents: cfg.Checkout.MinimumChargeCents,
	})
	if err != nil {
		return nil, err
	}

	synchronizer, err := stripesync.NewSynchronizer(stripesync.NewStripeClient(stripeClient), cfg.Checkout.Currency, logg.Component("stripesync"))
	if err != nil {
		return nil, err
	}
	productService, err := product.NewService(product.NewRepository(dbClient.DB()), synchronizer, checkoutMetrics, logg.Component("products"))
	if err != nil {
		return nil, err
	}

	return routes.NewRouter(routes.Dependencies{
		Config:       cfg,
		Logger:       logg,
		DB:           dbClient,
		Redis:        redisStore,
		Payments:     paymentService,
		PromoCodes:   validator,
		Products:     productService,
		MetricsRoute: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}), nil
}
