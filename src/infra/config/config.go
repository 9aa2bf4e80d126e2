// Package config handles application configuration via environment variables.
// It uses kelseyhightower/envconfig for parsing and joho/godotenv to seed the
// environment from an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Store drivers.
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

// DefaultEnvFile is loaded when no other file is named.
const DefaultEnvFile = ".env"

// Config holds all application configuration.
// Values are loaded from environment variables with the prefix "APP".
// Example: APP_PORT=4000, APP_STORE=sqlite
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Port is the HTTP server port (default: 4000)
	Port int `envconfig:"PORT" default:"4000"`

	// Host is the HTTP server host (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// ReadTimeout is the maximum duration for reading the entire request (default: 10s)
	ReadTimeout time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`

	// WriteTimeout is the maximum duration before timing out writes of the response (default: 30s)
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`

	// ShutdownTimeout is the maximum duration to wait for active connections to finish (default: 30s)
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`

	// CORSOrigin is sent as Access-Control-Allow-Origin (default: *)
	CORSOrigin string `envconfig:"CORS_ORIGIN" default:"*"`

	// WebEnabled serves the bundled browser page at / (default: true)
	WebEnabled bool `envconfig:"WEB_ENABLED" default:"true"`
}

// StoreConfig selects the record store implementation.
type StoreConfig struct {
	// Driver is one of postgres, sqlite, memory (default: postgres)
	Driver string `envconfig:"STORE" default:"postgres"`
}

// DatabaseConfig holds PostgreSQL and SQLite connection settings.
type DatabaseConfig struct {
	// URL is a full PostgreSQL connection string; when set it wins over the parts below.
	URL string `envconfig:"DATABASE_URL"`

	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"DB_NAME" default:"expense_tracker"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	// MaxOpenConns is the maximum number of pooled connections (default: 25)
	MaxOpenConns int `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`

	// MaxIdleConns is the number of connections kept warm (default: 5)
	MaxIdleConns int `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`

	// ConnMaxLifetime is the maximum lifetime of a connection (default: 5m)
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`

	// SQLitePath is the database file used by the sqlite store (default: ./data/expenses.db)
	SQLitePath string `envconfig:"SQLITE_PATH" default:"./data/expenses.db"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	// Level is the log level: debug, info, warn, error (default: info)
	Level string `envconfig:"LOG_LEVEL" default:"info"`

	// Format is the log format: json, text, plain (default: json)
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// Addr returns the server address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration from environment variables, after seeding the
// environment from envFile. A missing env file is not an error, and variables
// already set in the process environment are never overwritten.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	var cfg Config

	// Each section is processed separately so env vars stay flat (APP_PORT, not APP_SERVER_PORT).
	if err := envconfig.Process("APP", &cfg.Server); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}
	if err := envconfig.Process("APP", &cfg.Store); err != nil {
		return nil, fmt.Errorf("failed to load store config: %w", err)
	}
	if err := envconfig.Process("APP", &cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}
	if err := envconfig.Process("APP", &cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to load log config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		problems = append(problems, "shutdown timeout must be positive")
	}

	switch c.Store.Driver {
	case StorePostgres:
		if c.Database.URL == "" && c.Database.Host == "" {
			problems = append(problems, "postgres store needs APP_DATABASE_URL or APP_DB_HOST")
		}
		if c.Database.MaxOpenConns < 1 {
			problems = append(problems, "APP_DB_MAX_OPEN_CONNS must be at least 1")
		}
		if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
			problems = append(problems, "APP_DB_MAX_IDLE_CONNS must not exceed APP_DB_MAX_OPEN_CONNS")
		}
	case StoreSQLite:
		if strings.TrimSpace(c.Database.SQLitePath) == "" {
			problems = append(problems, "sqlite store needs APP_SQLITE_PATH")
		}
	case StoreMemory:
	default:
		problems = append(problems, fmt.Sprintf("invalid store %q: must be one of %s, %s, %s",
			c.Store.Driver, StorePostgres, StoreSQLite, StoreMemory))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}
