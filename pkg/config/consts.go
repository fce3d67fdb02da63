package config

const (
	EnvPrefix = "lokapasar"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "LOKAPASAR_DB_DSN"
	EnvDBHost = "LOKAPASAR_DB_HOST"
	EnvDBUser = "LOKAPASAR_DB_USER"
	EnvDBName = "LOKAPASAR_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
