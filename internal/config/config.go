// Package config builds the service configuration once at startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment modes.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

const defaultJWTSecret = "my_super_secret_key"

// Config is the immutable application configuration. Values are read from the
// environment, optionally seeded from an env file.
type Config struct {
	AppHost  string
	AppPort  string
	Env      string
	LogLevel string

	StorageDriver         string
	DatabaseURL           string
	DBMaxOpenConns        int
	DBMaxIdleConns        int
	StoreTimeout          time.Duration
	StoreRetryBackoff     time.Duration
	BalanceCacheTTL       time.Duration
	CORSAllowedOrigins    []string
	JWTSecretKey          string
	JWTExpiration         time.Duration
	BcryptCost            int
	RedisHost             string
	RedisPort             int
	RedisDB               int
	RedisPassword         string
	RedisPoolSize         int
	RedisMinIdleConns     int
	KafkaBrokers          []string
	KafkaTopic            string
	StaticDir             string
	MaxBodyBytes          int64
	AuthRequestsPerMinute int
	TrustProxyHeaders     bool
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return c.AppHost + ":" + c.AppPort
}

// IsDevelopment reports whether error details may be exposed to clients.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// RedisEnabled reports whether a Redis server is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// RedisAddr returns the Redis host:port address.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// KafkaEnabled reports whether transaction events are published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load loads environment variables from a file (missing file is not an error)
// and builds the Config.
func Load(path string) (*Config, error) {
	_ = godotenv.Load(path)

	var (
		cfg Config
		err error
	)

	cfg.AppHost = getEnv("APP_HOST", "0.0.0.0")
	cfg.AppPort = getEnv("APP_PORT", "5500")
	cfg.Env = getEnv("APP_ENV", EnvDevelopment)
	cfg.LogLevel = getEnv("APP_LOG_LEVEL", "info")

	// Storage config
	cfg.StorageDriver = getEnv("STORAGE_DRIVER", StoragePostgres)
	cfg.DatabaseURL = getEnv("DATABASE_URL", "")
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			getEnv("POSTGRES_USER", "user"),
			getEnv("POSTGRES_PASSWORD", "password"),
			getEnv("POSTGRES_HOST", "localhost"),
			getEnv("POSTGRES_PORT", "5432"),
			getEnv("POSTGRES_DB", "database"),
		)
	}
	if cfg.DBMaxOpenConns, err = getEnvInt("POSTGRES_MAX_OPEN_CONNS", 16); err != nil {
		return nil, err
	}
	if cfg.DBMaxIdleConns, err = getEnvInt("POSTGRES_MAX_IDLE_CONNS", 8); err != nil {
		return nil, err
	}
	if cfg.StoreTimeout, err = getEnvDuration("STORE_TIMEOUT_MS", 3000, time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.StoreRetryBackoff, err = getEnvDuration("STORE_RETRY_BACKOFF_MS", 100, time.Millisecond); err != nil {
		return nil, err
	}

	// HTTP config
	cfg.CORSAllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGIN", "http://localhost:3000"))
	cfg.StaticDir = getEnv("STATIC_DIR", "frontend")
	maxBody, err := getEnvInt("MAX_BODY_BYTES", 10240)
	if err != nil {
		return nil, err
	}
	cfg.MaxBodyBytes = int64(maxBody)
	if cfg.AuthRequestsPerMinute, err = getEnvInt("AUTH_RATE_PER_MINUTE", 10); err != nil {
		return nil, err
	}
	if cfg.TrustProxyHeaders, err = getEnvBool("TRUST_PROXY_HEADERS", false); err != nil {
		return nil, err
	}

	// Credentials config
	cfg.JWTSecretKey = getEnv("JWT_SECRET_KEY", defaultJWTSecret)
	if cfg.JWTExpiration, err = getEnvDuration("JWT_EXP_SECOND", 3600, time.Second); err != nil {
		return nil, err
	}
	if cfg.BcryptCost, err = getEnvInt("BCRYPT_COST", 10); err != nil {
		return nil, err
	}

	// Redis config
	cfg.RedisHost = getEnv("REDIS_HOST", "")
	if cfg.RedisPort, err = getEnvInt("REDIS_PORT", 6379); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	if cfg.RedisPoolSize, err = getEnvInt("REDIS_POOL_SIZE", 10); err != nil {
		return nil, err
	}
	if cfg.RedisMinIdleConns, err = getEnvInt("REDIS_MIN_IDLE_CONNS", 2); err != nil {
		return nil, err
	}
	if cfg.BalanceCacheTTL, err = getEnvDuration("BALANCE_CACHE_TTL_SECOND", 300, time.Second); err != nil {
		return nil, err
	}

	// Kafka config
	cfg.KafkaBrokers = splitList(getEnv("KAFKA_BROKERS", ""))
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", "ledger.transactions")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		errs = append(errs, fmt.Errorf("APP_ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Env))
	}
	if c.StorageDriver != StoragePostgres && c.StorageDriver != StorageMemory {
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StoragePostgres, StorageMemory, c.StorageDriver))
	}
	if c.Env == EnvProduction && c.JWTSecretKey == defaultJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET_KEY must be set in production"))
	}
	if c.JWTExpiration <= 0 {
		errs = append(errs, errors.New("JWT_EXP_SECOND must be positive"))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT_MS must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	val := getEnv(key, "")
	if val == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	val := getEnv(key, "")
	if val == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue int, unit time.Duration) (time.Duration, error) {
	n, err := getEnvInt(key, defaultValue)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * unit, nil
}

// splitList splits a comma-separated list and drops empty entries.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
