package config

const (
	EnvPrefix = "DEVICEMOVE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	DefaultSQLiteDSN = "file:devicemove.db?_busy_timeout=5000&_journal_mode=WAL"

	EnvAppEnv         = "DEVICEMOVE_APP_ENV"
	EnvPort           = "DEVICEMOVE_APP_PORT"
	EnvDBDSN          = "DEVICEMOVE_DB_DSN"
	EnvDBDriver       = "DEVICEMOVE_DB_DRIVER"
	EnvDBHost         = "DEVICEMOVE_DB_HOST"
	EnvDBUser         = "DEVICEMOVE_DB_USER"
	EnvDBName         = "DEVICEMOVE_DB_NAME"
	EnvRedisURL       = "DEVICEMOVE_REDIS_URL"
	EnvPolicyServices = "DEVICEMOVE_POLICY_SERVICES"
	EnvMinorMinAge    = "DEVICEMOVE_POLICY_MINOR_MIN_AGE"
	EnvMinorMaxAge    = "DEVICEMOVE_POLICY_MINOR_MAX_AGE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
