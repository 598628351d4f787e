package config

// EnvPrefix is intentionally empty: every variable names its full SWIFTCART_
// key in its envconfig tag.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "SWIFTCART_DB_DSN"
	EnvDBHost = "SWIFTCART_DB_HOST"
	EnvDBUser = "SWIFTCART_DB_USER"
	EnvDBName = "SWIFTCART_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
