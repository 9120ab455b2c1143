package config

const (
	EnvPrefix = "QUOTEREG"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EnvAppEnv   = "QUOTEREG_APP_ENV"
	EnvPort     = "QUOTEREG_APP_PORT"
	EnvLogLevel = "QUOTEREG_LOG_LEVEL"

	EnvDBDSN    = "QUOTEREG_DB_DSN"
	EnvDBDriver = "QUOTEREG_DB_DRIVER"
	EnvDBHost   = "QUOTEREG_DB_HOST"
	EnvDBUser   = "QUOTEREG_DB_USER"
	EnvDBName   = "QUOTEREG_DB_NAME"

	EnvRedisURL = "QUOTEREG_REDIS_URL"

	EnvListingMaxPageSize = "QUOTEREG_LISTING_MAX_PAGE_SIZE"
	EnvOfferCompanyName   = "QUOTEREG_OFFER_COMPANY_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
