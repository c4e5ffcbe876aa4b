package config

const (
	// EnvPrefix is the envconfig namespace for every setting.
	EnvPrefix = "MRPWORKS"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "MRPWORKS_APP_ENV"

	EnvDBDSN  = "MRPWORKS_DB_DSN"
	EnvDBHost = "MRPWORKS_DB_HOST"
	EnvDBUser = "MRPWORKS_DB_USER"
	EnvDBName = "MRPWORKS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
