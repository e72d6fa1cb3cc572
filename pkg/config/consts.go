package config

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "THREADKART"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "THREADKART_DB_DSN"
	EnvDBHost = "THREADKART_DB_HOST"
	EnvDBUser = "THREADKART_DB_USER"
	EnvDBName = "THREADKART_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
