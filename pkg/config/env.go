package config

const EnvPrefix = "PROCUREFLOW"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultSQLiteDSN = "file:procureflow.db?cache=shared&_foreign_keys=on"
)

const (
	EnvAppEnv     = "PROCUREFLOW_APP_ENV"
	EnvPort       = "PROCUREFLOW_APP_PORT"
	EnvDBDSN      = "PROCUREFLOW_DB_DSN"
	EnvDBDriver   = "PROCUREFLOW_DB_DRIVER"
	EnvDBHost     = "PROCUREFLOW_DB_HOST"
	EnvDBUser     = "PROCUREFLOW_DB_USER"
	EnvDBName     = "PROCUREFLOW_DB_NAME"
	EnvRedisURL   = "PROCUREFLOW_REDIS_URL"
	EnvJWTSecret  = "PROCUREFLOW_JWT_SECRET"
	EnvJWTIssuer  = "PROCUREFLOW_JWT_ISSUER"
	EnvJWTExpMins = "PROCUREFLOW_JWT_EXPIRATION_MINUTES"

	EnvHighValueThreshold = "PROCUREFLOW_WORKFLOW_HIGH_VALUE_THRESHOLD"
	EnvGRNAutoForward     = "PROCUREFLOW_WORKFLOW_GRN_AUTO_FORWARD"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
