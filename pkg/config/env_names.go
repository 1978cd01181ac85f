package config

// Environment variable names shared between Load, deploy manifests, and tests.
const (
	EnvPrefix = "STOREFRONT"

	EnvAppEnv = "STOREFRONT_APP_ENV"
	EnvPort   = "STOREFRONT_APP_PORT"

	EnvDBDSN  = "STOREFRONT_DB_DSN"
	EnvDBHost = "STOREFRONT_DB_HOST"
	EnvDBUser = "STOREFRONT_DB_USER"
	EnvDBName = "STOREFRONT_DB_NAME"

	EnvJWTSecret = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer = "STOREFRONT_JWT_ISSUER"

	EnvRedisURL = "STOREFRONT_REDIS_URL"

	EnvUploadsDir = "STOREFRONT_UPLOADS_DIR"

	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
