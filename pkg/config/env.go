package config

// EnvPrefix is handed to envconfig; every field carries an explicit envconfig tag.
const EnvPrefix = "BASKET"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	StorageBackendMemory = "memory"
	StorageBackendRedis  = "redis"
	StorageBackendDB     = "db"
)

const (
	EnvAppEnv   = "BASKET_APP_ENV"
	EnvPort     = "BASKET_APP_PORT"
	EnvLogLevel = "BASKET_LOG_LEVEL"

	EnvDBDSN  = "BASKET_DB_DSN"
	EnvDBHost = "BASKET_DB_HOST"
	EnvDBUser = "BASKET_DB_USER"
	EnvDBName = "BASKET_DB_NAME"

	EnvRedisURL = "BASKET_REDIS_URL"

	EnvStorageBackend = "BASKET_STORAGE_BACKEND"
	EnvCatalogPath    = "BASKET_CATALOG_PATH"

	EnvJWTSecret              = "BASKET_JWT_SECRET"
	EnvJWTIssuer              = "BASKET_JWT_ISSUER"
	EnvJWTExpMins             = "BASKET_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "BASKET_REFRESH_TOKEN_TTL_MINUTES"
	EnvDemoUsername           = "BASKET_DEMO_USERNAME"
	EnvDemoPassword           = "BASKET_DEMO_PASSWORD"
	EnvCORSAllowedOrigins     = "BASKET_CORS_ALLOWED_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
