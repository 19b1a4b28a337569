package config

// EnvPrefix namespaces every environment variable the terminal reads.
const EnvPrefix = "POS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv    = "POS_APP_ENV"
	EnvPort      = "POS_APP_PORT"
	EnvDBDriver  = "POS_DB_DRIVER"
	EnvDBDSN     = "POS_DB_DSN"
	EnvJWTSecret = "POS_JWT_SECRET"
)
