package config

// EnvPrefix is the envconfig prefix shared by every section.
const EnvPrefix = "GIVEBRIDGE"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv     = "GIVEBRIDGE_APP_ENV"
	EnvPort       = "GIVEBRIDGE_APP_PORT"
	EnvDBDSN      = "GIVEBRIDGE_DB_DSN"
	EnvDBHost     = "GIVEBRIDGE_DB_HOST"
	EnvDBUser     = "GIVEBRIDGE_DB_USER"
	EnvDBName     = "GIVEBRIDGE_DB_NAME"
	EnvRedisURL   = "GIVEBRIDGE_REDIS_URL"
	EnvJWTSecret  = "GIVEBRIDGE_JWT_SECRET"
	EnvJWTIssuer  = "GIVEBRIDGE_JWT_ISSUER"
	EnvJWTExpMins = "GIVEBRIDGE_JWT_EXPIRATION_MINUTES"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
