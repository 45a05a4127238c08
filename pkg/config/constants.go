package config

const (
	EnvPrefix = "STOREFRONT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv         = "STOREFRONT_APP_ENV"
	EnvPort           = "STOREFRONT_APP_PORT"
	EnvDBDSN          = "STOREFRONT_DB_DSN"
	EnvDBHost         = "STOREFRONT_DB_HOST"
	EnvDBUser         = "STOREFRONT_DB_USER"
	EnvDBName         = "STOREFRONT_DB_NAME"
	EnvDBPassword     = "STOREFRONT_DB_PASSWORD"
	EnvRedisURL       = "STOREFRONT_REDIS_URL"
	EnvStripeAPIKey   = "STOREFRONT_STRIPE_API_KEY"
	EnvStripeEnv      = "STOREFRONT_STRIPE_ENV"
	EnvJWTSecret      = "STOREFRONT_SUPABASE_JWT_SECRET"
	EnvAdminEmails    = "STOREFRONT_ADMIN_EMAILS"
	EnvMinimumCharge  = "STOREFRONT_CHECKOUT_MINIMUM_CHARGE_CENTS"
	EnvUseSQLite      = "STOREFRONT_USE_SQLITE"
	EnvCheckoutCcy    = "STOREFRONT_CHECKOUT_CURRENCY"
	EnvPromoRateLimit = "STOREFRONT_PROMO_RATE_LIMIT"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
