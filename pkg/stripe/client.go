package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/nnaudio/storefront-api/pkg/config"
	"github.com/nnaudio/storefront-api/pkg/logger"
)

// secret key prefixes accepted per environment
var keyPrefixes = map[string][]string{
	"test": {"sk_test_", "rk_test_"},
	"live": {"sk_live_", "rk_live_"},
}

// Client carries the validated Stripe configuration. Resource packages read
// the key installed on stripe.Key, so holding a Client proves it was set.
type Client struct {
	environment string
}

// NewClient checks the key against the configured environment, then installs
// it together with a backend that retries and logs through logg.
func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	env := cfg.Environment()
	prefixes, ok := keyPrefixes[env]
	if !ok {
		return nil, fmt.Errorf("stripe environment must be \"test\" or \"live\", got %q", env)
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("stripe api key is required")
	}
	if !hasAnyPrefix(apiKey, prefixes) {
		return nil, fmt.Errorf("stripe environment %q requires a key starting with %s", env, strings.Join(prefixes, " or "))
	}

	stripe.Key = apiKey
	backendCfg := &stripe.BackendConfig{MaxNetworkRetries: stripe.Int64(cfg.MaxNetworkRetries)}
	if logg != nil {
		backendCfg.LeveledLogger = NewLeveledLogger(ctx, logg)
	}
	stripe.SetBackend(stripe.APIBackend, stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg))

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"stripe_env":     env,
			"stripe_retries": cfg.MaxNetworkRetries,
		}), "stripe.configured")
	}
	return &Client{environment: env}, nil
}

// Environment reports the Stripe environment in use.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// IsResourceMissing reports whether err is Stripe's resource_missing error.
func IsResourceMissing(err error) bool {
	var stripeErr *stripe.Error
	return errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing
}

// ErrorMessage returns the caller facing text of a Stripe error, falling
// back to err.Error() for anything else.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if msg := strings.TrimSpace(stripeErr.Msg); msg != "" {
			return msg
		}
	}
	return err.Error()
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
