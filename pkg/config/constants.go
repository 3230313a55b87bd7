package config

const EnvPrefix = "MALLBILLING"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv   = "MALLBILLING_APP_ENV"
	EnvPort     = "MALLBILLING_APP_PORT"
	EnvLogLevel = "MALLBILLING_LOG_LEVEL"

	EnvDBDSN     = "MALLBILLING_DB_DSN"
	EnvDBDriver  = "MALLBILLING_DB_DRIVER"
	EnvDBHost    = "MALLBILLING_DB_HOST"
	EnvDBUser    = "MALLBILLING_DB_USER"
	EnvDBName    = "MALLBILLING_DB_NAME"
	EnvUseSQLite = "MALLBILLING_USE_SQLITE"

	EnvRedisURL = "MALLBILLING_REDIS_URL"

	EnvJWTSecret              = "MALLBILLING_JWT_SECRET"
	EnvJWTIssuer              = "MALLBILLING_JWT_ISSUER"
	EnvJWTExpMins             = "MALLBILLING_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "MALLBILLING_REFRESH_TOKEN_TTL_MINUTES"

	EnvCartTTL          = "MALLBILLING_CART_TTL"
	EnvReceiptStoreName = "MALLBILLING_RECEIPT_STORE_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
