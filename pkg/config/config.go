package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Eventing      EventingConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Brochure      BrochureConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Retention     RetentionConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SCHOOLBRIDGE_APP_ENV" required:"true"`
	Port         string `envconfig:"SCHOOLBRIDGE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SCHOOLBRIDGE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SCHOOLBRIDGE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind        string `envconfig:"SCHOOLBRIDGE_SERVICE_KIND" default:"api"`
	MetricsPort string `envconfig:"SCHOOLBRIDGE_METRICS_PORT" default:"9464"`
}

type DBConfig struct {
	DSN    string `envconfig:"SCHOOLBRIDGE_DB_DSN"`
	Driver string `envconfig:"SCHOOLBRIDGE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SCHOOLBRIDGE_DB_HOST"`
	LegacyPort     int    `envconfig:"SCHOOLBRIDGE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SCHOOLBRIDGE_DB_USER"`
	LegacyPassword string `envconfig:"SCHOOLBRIDGE_DB_PASSWORD"`
	LegacyName     string `envconfig:"SCHOOLBRIDGE_DB_NAME"`
	LegacySSLMode  string `envconfig:"SCHOOLBRIDGE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SCHOOLBRIDGE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SCHOOLBRIDGE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SCHOOLBRIDGE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SCHOOLBRIDGE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SCHOOLBRIDGE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SCHOOLBRIDGE_REDIS_ADDR"`
	Password     string        `envconfig:"SCHOOLBRIDGE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SCHOOLBRIDGE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SCHOOLBRIDGE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SCHOOLBRIDGE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SCHOOLBRIDGE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SCHOOLBRIDGE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SCHOOLBRIDGE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SCHOOLBRIDGE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SCHOOLBRIDGE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SCHOOLBRIDGE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SCHOOLBRIDGE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SCHOOLBRIDGE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SCHOOLBRIDGE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SCHOOLBRIDGE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SCHOOLBRIDGE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SCHOOLBRIDGE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SCHOOLBRIDGE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SCHOOLBRIDGE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SCHOOLBRIDGE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SCHOOLBRIDGE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SCHOOLBRIDGE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SCHOOLBRIDGE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite     bool   `envconfig:"SCHOOLBRIDGE_USE_SQLITE" default:"false"`
	AutoMigrate   bool   `envconfig:"SCHOOLBRIDGE_AUTO_MIGRATE" default:"false"`
	GCSAccessMode string `envconfig:"SCHOOLBRIDGE_GCS_ACCESS_MODE" default:"public"`
}

type EventingConfig struct {
	ConsumerIdempotencyTTL time.Duration `envconfig:"SCHOOLBRIDGE_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SCHOOLBRIDGE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"SCHOOLBRIDGE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SCHOOLBRIDGE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"SCHOOLBRIDGE_GCS_BUCKET_NAME"`
	UploadURLExpiry   time.Duration `envconfig:"SCHOOLBRIDGE_GCS_UPLOAD_URL_EXPIRY" default:"15m"`
	DownloadURLExpiry time.Duration `envconfig:"SCHOOLBRIDGE_GCS_DOWNLOAD_URL_EXPIRY" default:"24h"`
}

type BrochureConfig struct {
	MaxUploadMB int `envconfig:"SCHOOLBRIDGE_BROCHURE_MAX_UPLOAD_MB" default:"25"`
}

type PubSubConfig struct {
	DomainTopic               string `envconfig:"SCHOOLBRIDGE_PUBSUB_DOMAIN_TOPIC" default:"sb-domain-events"`
	NotificationsSubscription string `envconfig:"SCHOOLBRIDGE_PUBSUB_NOTIFICATIONS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SCHOOLBRIDGE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SCHOOLBRIDGE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SCHOOLBRIDGE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type RetentionConfig struct {
	NotificationMaxAge time.Duration `envconfig:"SCHOOLBRIDGE_NOTIFICATION_MAX_AGE" default:"2160h"`
	OutboxMaxAge       time.Duration `envconfig:"SCHOOLBRIDGE_OUTBOX_MAX_AGE" default:"720h"`
	CronInterval       time.Duration `envconfig:"SCHOOLBRIDGE_CRON_INTERVAL" default:"24h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
