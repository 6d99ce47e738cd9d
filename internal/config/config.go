package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Storage      StorageConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	RateLimit    RateLimitConfig
	Marketplace  MarketplaceConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// StorageConfig selects the repository backend.
type StorageConfig struct {
	// Driver is "postgres" or "memory".
	Driver string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	// AdminEmail and AdminPassword bootstrap the first admin account.
	AdminEmail    string
	AdminPassword string
}

// NotificationConfig controls realtime fan-out of notifications.
type NotificationConfig struct {
	ChannelPrefix   string
	PublishRealtime bool
}

// RateLimitConfig throttles mutating routes per client IP.
type RateLimitConfig struct {
	Enabled bool
	// Rate uses the ulule/limiter format, e.g. "60-M".
	Rate string
}

// MarketplaceConfig holds the business policies of the rental engine.
type MarketplaceConfig struct {
	PlatformFee            decimal.Decimal
	ReserveOnDirectRequest bool
	ListingReleasePolicy   string
	SupportContact         string
}

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "hulame-rental-service")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_HOST", "0.0.0.0")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_VERSION", "dev")
	v.SetDefault("HTTP_REQUEST_TIMEOUT_SECONDS", 30)

	v.SetDefault("STORAGE_DRIVER", StorageDriverPostgres)

	v.SetDefault("POSTGRES_DSN", "")
	v.SetDefault("POSTGRES_MAX_CONNS", 10)
	v.SetDefault("POSTGRES_MIN_CONNS", 2)
	v.SetDefault("POSTGRES_RUN_MIGRATIONS", true)
	v.SetDefault("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)
	v.SetDefault("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)

	v.SetDefault("REDIS_ADDR", "127.0.0.1:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("AUTH_JWT_SECRET", "dev-secret")
	v.SetDefault("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60)
	v.SetDefault("AUTH_BCRYPT_COST", 12)
	v.SetDefault("AUTH_ADMIN_EMAIL", "")
	v.SetDefault("AUTH_ADMIN_PASSWORD", "")

	v.SetDefault("NOTIFY_CHANNEL_PREFIX", "notifications")
	v.SetDefault("NOTIFY_PUBLISH_REALTIME", true)

	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_RATE", "120-M")

	v.SetDefault("PLATFORM_FEE", "10.00")
	v.SetDefault("RESERVE_ON_DIRECT_REQUEST", false)
	v.SetDefault("LISTING_RELEASE_POLICY", "retain")
	v.SetDefault("SUPPORT_CONTACT", "support@hulame.com")
}

// Load reads configuration from .env and environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	fee, err := decimal.NewFromString(strings.TrimSpace(v.GetString("PLATFORM_FEE")))
	if err != nil {
		return nil, fmt.Errorf("invalid PLATFORM_FEE: %w", err)
	}
	if fee.IsNegative() {
		return nil, fmt.Errorf("invalid PLATFORM_FEE: must not be negative")
	}

	driver := strings.ToLower(v.GetString("STORAGE_DRIVER"))
	if driver != StorageDriverPostgres && driver != StorageDriverMemory {
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q", driver)
	}

	policy := strings.ToLower(v.GetString("LISTING_RELEASE_POLICY"))
	if policy != "retain" && policy != "release" {
		return nil, fmt.Errorf("invalid LISTING_RELEASE_POLICY %q", policy)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  v.GetString("APP_NAME"),
			Env:                   v.GetString("APP_ENV"),
			Host:                  v.GetString("APP_HOST"),
			Port:                  v.GetString("APP_PORT"),
			Version:               v.GetString("APP_VERSION"),
			RequestTimeoutSeconds: v.GetInt("HTTP_REQUEST_TIMEOUT_SECONDS"),
		},
		Storage: StorageConfig{
			Driver: driver,
		},
		Postgres: PostgresConfig{
			DSN:            v.GetString("POSTGRES_DSN"),
			MaxConns:       v.GetInt32("POSTGRES_MAX_CONNS"),
			MinConns:       v.GetInt32("POSTGRES_MIN_CONNS"),
			RunMigrations:  v.GetBool("POSTGRES_RUN_MIGRATIONS"),
			ConnMaxIdleSec: v.GetInt32("POSTGRES_CONN_MAX_IDLE_SECONDS"),
			ConnMaxLifeSec: v.GetInt32("POSTGRES_CONN_MAX_LIFE_SECONDS"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Logger: LoggerConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Auth: AuthConfig{
			JWTSecret:             v.GetString("AUTH_JWT_SECRET"),
			AccessTokenTTLMinutes: v.GetInt("AUTH_ACCESS_TOKEN_TTL_MINUTES"),
			BcryptCost:            v.GetInt("AUTH_BCRYPT_COST"),
			AdminEmail:            v.GetString("AUTH_ADMIN_EMAIL"),
			AdminPassword:         v.GetString("AUTH_ADMIN_PASSWORD"),
		},
		Notification: NotificationConfig{
			ChannelPrefix:   v.GetString("NOTIFY_CHANNEL_PREFIX"),
			PublishRealtime: v.GetBool("NOTIFY_PUBLISH_REALTIME"),
		},
		RateLimit: RateLimitConfig{
			Enabled: v.GetBool("RATE_LIMIT_ENABLED"),
			Rate:    v.GetString("RATE_LIMIT_RATE"),
		},
		Marketplace: MarketplaceConfig{
			PlatformFee:            fee,
			ReserveOnDirectRequest: v.GetBool("RESERVE_ON_DIRECT_REQUEST"),
			ListingReleasePolicy:   policy,
			SupportContact:         v.GetString("SUPPORT_CONTACT"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}
