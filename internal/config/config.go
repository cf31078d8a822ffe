package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage drivers selectable through DATA_BACKEND.
const (
	DriverRemote   = "remote"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName  string `env:"APP_NAME" envDefault:"Government Schemes Portal"`
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DataBackend    string        `env:"DATA_BACKEND" envDefault:"remote"`
	BackendURL     string        `env:"BACKEND_URL"`
	BackendAnonKey string        `env:"BACKEND_ANON_KEY"`
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`
	DatabaseURL    string        `env:"DATABASE_URL"`
	SQLitePath     string        `env:"SQLITE_PATH" envDefault:"schemes.db"`
	RedisURL       string        `env:"REDIS_URL"`
	MigrateOnStart bool          `env:"MIGRATE_ON_START" envDefault:"false"`

	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	CookieSecure  bool          `env:"COOKIE_SECURE" envDefault:"false"`

	OTPDelay       time.Duration `env:"OTP_DELAY" envDefault:"1s"`
	OTPMaxAttempts int           `env:"OTP_MAX_ATTEMPTS" envDefault:"3"`
	OTPFormTTL     time.Duration `env:"OTP_FORM_TTL" envDefault:"15m"`
	LoginRateLimit int           `env:"LOGIN_RATE_LIMIT" envDefault:"5"`

	CatalogCacheTTL  time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"1m"`
	DashboardTimeout time.Duration `env:"DASHBOARD_TIMEOUT" envDefault:"5s"`
	IdempotencyTTL   time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`
	ShutdownPeriod   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads an optional .env file and then populates a Config from the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse populates a Config from the process environment without touching .env files.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.DataBackend = strings.ToLower(strings.TrimSpace(cfg.DataBackend))

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.DataBackend {
	case DriverRemote:
		if c.BackendURL == "" {
			return fmt.Errorf("BACKEND_URL must be set when DATA_BACKEND=%s", DriverRemote)
		}
		if c.BackendAnonKey == "" {
			return fmt.Errorf("BACKEND_ANON_KEY must be set when DATA_BACKEND=%s", DriverRemote)
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set when DATA_BACKEND=%s", DriverPostgres)
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH must be set when DATA_BACKEND=%s", DriverSQLite)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown DATA_BACKEND %q", c.DataBackend)
	}

	if c.SessionSecret == "" {
		if !c.IsDev() {
			return fmt.Errorf("SESSION_SECRET must be set when APP_ENV=%s", c.AppEnv)
		}
	}
	if c.OTPMaxAttempts <= 0 {
		return fmt.Errorf("OTP_MAX_ATTEMPTS must be positive")
	}
	return nil
}

// IsDev reports whether the app runs in a local development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}
