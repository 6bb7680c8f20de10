package config

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv             = "STOREFRONT_APP_ENV"
	EnvPort               = "STOREFRONT_APP_PORT"
	EnvDBDSN              = "STOREFRONT_DB_DSN"
	EnvDBHost             = "STOREFRONT_DB_HOST"
	EnvDBUser             = "STOREFRONT_DB_USER"
	EnvDBName             = "STOREFRONT_DB_NAME"
	EnvUseSQLite          = "STOREFRONT_USE_SQLITE"
	EnvRedisURL           = "STOREFRONT_REDIS_URL"
	EnvJWTSecret          = "STOREFRONT_JWT_SECRET"
	EnvShippingFee        = "STOREFRONT_CHECKOUT_SHIPPING_FEE"
	EnvFreeShippingOver   = "STOREFRONT_CHECKOUT_FREE_SHIPPING_OVER"
	EnvTrackingPixelID    = "STOREFRONT_TRACKING_PIXEL_ID"
	EnvTrackingToken      = "STOREFRONT_TRACKING_ACCESS_TOKEN"
	EnvCORSAllowedOrigins = "STOREFRONT_CORS_ALLOWED_ORIGINS"
	EnvCORSMaxAge         = "STOREFRONT_CORS_MAX_AGE"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
