package config

// EnvPrefix namespaces every environment variable consumed by envconfig.
const EnvPrefix = "SCHOOLBRIDGE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
	AppEnvTest = "test"
)

const (
	EnvAppEnv                 = "SCHOOLBRIDGE_APP_ENV"
	EnvPort                   = "SCHOOLBRIDGE_APP_PORT"
	EnvDBDSN                  = "SCHOOLBRIDGE_DB_DSN"
	EnvDBHost                 = "SCHOOLBRIDGE_DB_HOST"
	EnvDBUser                 = "SCHOOLBRIDGE_DB_USER"
	EnvDBName                 = "SCHOOLBRIDGE_DB_NAME"
	EnvRedisURL               = "SCHOOLBRIDGE_REDIS_URL"
	EnvJWTSecret              = "SCHOOLBRIDGE_JWT_SECRET"
	EnvJWTIssuer              = "SCHOOLBRIDGE_JWT_ISSUER"
	EnvJWTExpMins             = "SCHOOLBRIDGE_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "SCHOOLBRIDGE_REFRESH_TOKEN_TTL_MINUTES"
	EnvGCPProjectID           = "SCHOOLBRIDGE_GCP_PROJECT_ID"
	EnvGCSBucket              = "SCHOOLBRIDGE_GCS_BUCKET_NAME"
	EnvPubSubDomainTopic      = "SCHOOLBRIDGE_PUBSUB_DOMAIN_TOPIC"
	EnvPubSubNotificationsSub = "SCHOOLBRIDGE_PUBSUB_NOTIFICATIONS_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
