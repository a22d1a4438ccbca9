package config

const EnvPrefix = "PAPERLEDGER"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv    = "PAPERLEDGER_APP_ENV"
	EnvLogLevel  = "PAPERLEDGER_LOG_LEVEL"
	EnvLogFormat = "PAPERLEDGER_LOG_FORMAT"

	EnvDBDSN      = "PAPERLEDGER_DB_DSN"
	EnvDBDriver   = "PAPERLEDGER_DB_DRIVER"
	EnvDBHost     = "PAPERLEDGER_DB_HOST"
	EnvDBPort     = "PAPERLEDGER_DB_PORT"
	EnvDBUser     = "PAPERLEDGER_DB_USER"
	EnvDBPassword = "PAPERLEDGER_DB_PASSWORD"
	EnvDBName     = "PAPERLEDGER_DB_NAME"
	EnvSQLitePath = "PAPERLEDGER_SQLITE_PATH"

	EnvRedisURL  = "PAPERLEDGER_REDIS_URL"
	EnvRedisAddr = "PAPERLEDGER_REDIS_ADDR"

	EnvUseSQLite        = "PAPERLEDGER_USE_SQLITE"
	EnvDistributedLocks = "PAPERLEDGER_DISTRIBUTED_LOCKS"

	EnvRestockInterval   = "PAPERLEDGER_RESTOCK_INTERVAL"
	EnvRestockMultiplier = "PAPERLEDGER_RESTOCK_BUFFER_MULTIPLIER"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
