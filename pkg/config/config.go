package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Idempotency  IdempotencyConfig
	RateLimit    RateLimitConfig
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
	Env          string `envconfig:"THREADKART_APP_ENV" required:"true"`
	Port         string `envconfig:"THREADKART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"THREADKART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"THREADKART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"THREADKART_DB_DSN"`
	Driver string `envconfig:"THREADKART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"THREADKART_DB_HOST"`
	LegacyPort     int    `envconfig:"THREADKART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"THREADKART_DB_USER"`
	LegacyPassword string `envconfig:"THREADKART_DB_PASSWORD"`
	LegacyName     string `envconfig:"THREADKART_DB_NAME"`
	LegacySSLMode  string `envconfig:"THREADKART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"THREADKART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"THREADKART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"THREADKART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"THREADKART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"THREADKART_REDIS_URL"`
	Address      string        `envconfig:"THREADKART_REDIS_ADDRESS"`
	Password     string        `envconfig:"THREADKART_REDIS_PASSWORD"`
	DB           int           `envconfig:"THREADKART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"THREADKART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"THREADKART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"THREADKART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"THREADKART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"THREADKART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"THREADKART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"THREADKART_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"THREADKART_JWT_EXPIRATION_MINUTES" default:"60"`
}

// TokenTTL returns the access token lifetime.
func (j JWTConfig) TokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"THREADKART_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"THREADKART_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"THREADKART_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"THREADKART_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	OrderCreatedTopic      string `envconfig:"THREADKART_PUBSUB_ORDER_CREATED_TOPIC" default:"order.created"`
	ItemStatusUpdatedTopic string `envconfig:"THREADKART_PUBSUB_ITEM_STATUS_UPDATED_TOPIC" default:"order.item.status.updated"`
	PublishTimeout         time.Duration `envconfig:"THREADKART_PUBSUB_PUBLISH_TIMEOUT" default:"5s"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"THREADKART_IDEMPOTENCY_TTL" default:"168h"`
}

type RateLimitConfig struct {
	CheckoutWindow time.Duration `envconfig:"THREADKART_RATELIMIT_CHECKOUT_WINDOW" default:"1m"`
	CheckoutLimit  int64         `envconfig:"THREADKART_RATELIMIT_CHECKOUT_LIMIT" default:"10"`
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
