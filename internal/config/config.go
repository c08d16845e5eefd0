package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends selectable through STORE_BACKEND / TOKEN_BACKEND.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Store    StoreConfig
	Reaper   ReaperConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int

	// ContractDir holds the published contract documents (guide, WADL, XSDs).
	ContractDir string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32

	// ConnectAttempts bounds start-up pings while the server comes up.
	ConnectAttempts int
	SlowQueryMs     int
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	PoolSize  int
	KeyPrefix string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level       string
	Development bool
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	TokenTTLMinutes int
	TokenHeader     string
	BcryptCost      int
	AdminUsername   string
	AdminPassword   string
	AdminTenant     string
}

// StoreConfig selects where registries and tokens live.
type StoreConfig struct {
	Backend          string
	TokenBackend     string
	ListDefaultLimit int
	ListMaxLimit     int
}

// ReaperConfig tunes the background reclamation pass.
type ReaperConfig struct {
	IntervalSeconds       int
	TokenRetentionMinutes int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "identity-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "v1.0"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			ContractDir:           getEnv("APP_CONTRACT_DIR", "contract"),
		},
		Postgres: PostgresConfig{
			DSN:             os.Getenv("POSTGRES_DSN"),
			MaxConns:        int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:        int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:   getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:   getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec:  int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec:  int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
			ConnectAttempts: getEnvAsInt("POSTGRES_CONNECT_ATTEMPTS", 5),
			SlowQueryMs:     getEnvAsInt("POSTGRES_SLOW_QUERY_MS", 200),
		},
		Redis: RedisConfig{
			Addr:      os.Getenv("REDIS_ADDR"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        redisDB,
			PoolSize:  getEnvAsInt("REDIS_POOL_SIZE", 0),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "identity:token:"),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnv("APP_ENV", "development") == "development",
		},
		Auth: AuthConfig{
			TokenTTLMinutes: getEnvAsInt("AUTH_TOKEN_TTL_MINUTES", 60),
			TokenHeader:     getEnv("AUTH_TOKEN_HEADER", "X-Auth-Token"),
			BcryptCost:      getEnvAsInt("AUTH_BCRYPT_COST", 12),
			AdminUsername:   getEnv("AUTH_ADMIN_USERNAME", "admin"),
			AdminPassword:   os.Getenv("AUTH_ADMIN_PASSWORD"),
			AdminTenant:     os.Getenv("AUTH_ADMIN_TENANT"),
		},
		Store: StoreConfig{
			Backend:          strings.ToLower(getEnv("STORE_BACKEND", BackendMemory)),
			TokenBackend:     strings.ToLower(getEnv("TOKEN_BACKEND", BackendMemory)),
			ListDefaultLimit: getEnvAsInt("TENANT_LIST_DEFAULT_LIMIT", 10),
			ListMaxLimit:     getEnvAsInt("TENANT_LIST_MAX_LIMIT", 100),
		},
		Reaper: ReaperConfig{
			IntervalSeconds:       getEnvAsInt("REAPER_INTERVAL_SECONDS", 60),
			TokenRetentionMinutes: getEnvAsInt("REAPER_TOKEN_RETENTION_MINUTES", 1440),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the service cannot run with.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("STORE_BACKEND=postgres requires POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("invalid STORE_BACKEND %q", c.Store.Backend)
	}

	switch c.Store.TokenBackend {
	case BackendMemory:
	case BackendPostgres:
		// tokens reference users by foreign key
		if c.Store.Backend != BackendPostgres {
			return fmt.Errorf("TOKEN_BACKEND=postgres requires STORE_BACKEND=postgres")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("TOKEN_BACKEND=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("invalid TOKEN_BACKEND %q", c.Store.TokenBackend)
	}

	if c.Auth.TokenTTLMinutes <= 0 {
		return fmt.Errorf("AUTH_TOKEN_TTL_MINUTES must be positive")
	}
	if strings.TrimSpace(c.Auth.TokenHeader) == "" {
		return fmt.Errorf("AUTH_TOKEN_HEADER must not be empty")
	}
	if c.Store.ListDefaultLimit <= 0 || c.Store.ListMaxLimit < c.Store.ListDefaultLimit {
		return fmt.Errorf("invalid tenant list limits %d/%d", c.Store.ListDefaultLimit, c.Store.ListMaxLimit)
	}
	return nil
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

// SlowQuery is the latency above which statements are logged; zero disables it.
func (p PostgresConfig) SlowQuery() time.Duration {
	if p.SlowQueryMs <= 0 {
		return 0
	}
	return time.Duration(p.SlowQueryMs) * time.Millisecond
}

// TokenTTL returns the lifetime of newly issued tokens.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLMinutes) * time.Minute
}

// Interval returns how often the reaper runs; zero disables it.
func (r ReaperConfig) Interval() time.Duration {
	if r.IntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(r.IntervalSeconds) * time.Second
}

// TokenRetention is how long expired tokens are kept so they still report
// "token expired" instead of "invalid token".
func (r ReaperConfig) TokenRetention() time.Duration {
	if r.TokenRetentionMinutes < 0 {
		return 0
	}
	return time.Duration(r.TokenRetentionMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
