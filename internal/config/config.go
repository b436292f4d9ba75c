package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	SessionDriverRedis  = "redis"
	SessionDriverMemory = "memory"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Session     SessionConfig
	Server      ServerConfig
	RateLimit   RateLimitConfig
	Log         LogConfig
	Store       string // postgres | memory
	AutoMigrate bool
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // G117: DB connection config
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
}

// JWTConfig holds bearer token settings.
type JWTConfig struct {
	Secret string //nolint:gosec // G117: JWT signing secret config
	TTL    time.Duration
}

// SessionConfig holds cookie session settings.
type SessionConfig struct {
	Driver       string // redis | memory
	TTL          time.Duration
	CookieSecure bool
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

// RateLimitConfig holds token bucket settings. Auth limits apply per client
// IP to signup and login; the API limits apply per principal.
type RateLimitConfig struct {
	RPS       float64
	Burst     int
	AuthRPS   float64
	AuthBurst int
}

type LogConfig struct {
	Level  string
	Format string // text | json
}

// Load reads configuration from environment variables, after merging a
// .env file from the working directory when one exists. Variables already
// set in the environment win over the file.
// Defaults are safe for local development only. In production,
// sensitive values (JWT secret, DB password) must be set explicitly.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config.Load: .env: %w", err)
	}

	var errs []error
	intVar := func(key string, fallback int) int {
		n, err := getEnvInt(key, fallback)
		errs = append(errs, err)
		return n
	}
	durVar := func(key string, fallback time.Duration) time.Duration {
		d, err := getEnvDuration(key, fallback)
		errs = append(errs, err)
		return d
	}
	boolVar := func(key string, fallback bool) bool {
		b, err := getEnvBool(key, fallback)
		errs = append(errs, err)
		return b
	}
	floatVar := func(key string, fallback float64) float64 {
		f, err := getEnvFloat(key, fallback)
		errs = append(errs, err)
		return f
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("LEASEDESK_DB_HOST", "localhost"),
			Port:     intVar("LEASEDESK_DB_PORT", 5432),
			User:     getEnv("LEASEDESK_DB_USER", "leasedesk"),
			Password: getEnv("LEASEDESK_DB_PASSWORD", ""),
			DBName:   getEnv("LEASEDESK_DB_NAME", "leasedesk_dev"),
			SSLMode:  getEnv("LEASEDESK_DB_SSLMODE", "disable"),
			MaxConns: intVar("LEASEDESK_DB_MAX_CONNS", 25),
		},
		Redis: RedisConfig{
			Addr:     getEnv("LEASEDESK_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("LEASEDESK_REDIS_PASSWORD", ""),
			DB:       intVar("LEASEDESK_REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("LEASEDESK_JWT_SECRET", ""),
			TTL:    durVar("LEASEDESK_JWT_TTL", 24*time.Hour),
		},
		Session: SessionConfig{
			Driver:       getEnv("LEASEDESK_SESSION_STORE", SessionDriverRedis),
			TTL:          durVar("LEASEDESK_SESSION_TTL", 24*time.Hour),
			CookieSecure: boolVar("LEASEDESK_COOKIE_SECURE", false),
		},
		Server: ServerConfig{
			Addr:            getEnv("LEASEDESK_SERVER_ADDR", ":8080"),
			ReadTimeout:     durVar("LEASEDESK_SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    durVar("LEASEDESK_SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: durVar("LEASEDESK_SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			CORSOrigins:     getEnvList("LEASEDESK_CORS_ORIGINS", []string{"http://localhost:5173"}),
		},
		RateLimit: RateLimitConfig{
			RPS:       floatVar("LEASEDESK_RATE_LIMIT_RPS", 100),
			Burst:     intVar("LEASEDESK_RATE_LIMIT_BURST", 200),
			AuthRPS:   floatVar("LEASEDESK_AUTH_RATE_LIMIT_RPS", 1),
			AuthBurst: intVar("LEASEDESK_AUTH_RATE_LIMIT_BURST", 10),
		},
		Log: LogConfig{
			Level:  getEnv("LEASEDESK_LOG_LEVEL", "info"),
			Format: getEnv("LEASEDESK_LOG_FORMAT", "json"),
		},
		Store:       getEnv("LEASEDESK_STORE", StoreDriverPostgres),
		AutoMigrate: boolVar("LEASEDESK_AUTO_MIGRATE", false),
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	// JWT secret is required (no insecure default).
	if c.JWT.Secret == "" {
		return errors.New("LEASEDESK_JWT_SECRET is required")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("LEASEDESK_JWT_SECRET must be at least 32 characters")
	}

	switch c.Store {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("LEASEDESK_STORE must be postgres or memory, got %q", c.Store)
	}
	switch c.Session.Driver {
	case SessionDriverRedis, SessionDriverMemory:
	default:
		return fmt.Errorf("LEASEDESK_SESSION_STORE must be redis or memory, got %q", c.Session.Driver)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("LEASEDESK_LOG_FORMAT must be text or json, got %q", c.Log.Format)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("LEASEDESK_LOG_LEVEL: %w", err)
	}

	if c.Store == StoreDriverPostgres && c.Database.SSLMode == "disable" && c.Database.Host != "localhost" {
		log.Warn().Msg("LEASEDESK_DB_SSLMODE=disable is insecure for remote databases; set to 'require' or 'verify-full'")
	}

	// Bounds checks.
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("LEASEDESK_DB_PORT must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("LEASEDESK_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("LEASEDESK_JWT_TTL must be positive, got %s", c.JWT.TTL)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("LEASEDESK_SESSION_TTL must be positive, got %s", c.Session.TTL)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("LEASEDESK_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("LEASEDESK_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("LEASEDESK_SERVER_SHUTDOWN_TIMEOUT must be positive, got %s", c.Server.ShutdownTimeout)
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst < 1 {
		return errors.New("LEASEDESK_RATE_LIMIT_RPS and LEASEDESK_RATE_LIMIT_BURST must be positive")
	}
	if c.RateLimit.AuthRPS <= 0 || c.RateLimit.AuthBurst < 1 {
		return errors.New("LEASEDESK_AUTH_RATE_LIMIT_RPS and LEASEDESK_AUTH_RATE_LIMIT_BURST must be positive")
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as float: %w", key, v, err)
	}
	return f, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s=%q as bool: %w", key, v, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
