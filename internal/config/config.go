// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Database
	DatabaseURL string // PostgreSQL connection string (optional, uses in-memory if not set)

	// Ranking engine
	SweepInterval time.Duration // How often the full ranking sweep runs

	// Security
	AdminSecret  string // X-Admin-Secret for admin endpoints
	RateLimitRPM int    // Requests per minute per client

	// Observability
	OTLPEndpoint string // OTLP gRPC endpoint for traces (optional)
}

// Defaults
const (
	DefaultPort          = "8080"
	DefaultEnv           = "development"
	DefaultLogLevel      = "info"
	DefaultRateLimit     = 120
	DefaultSweepInterval = 24 * time.Hour
)

// Load reads configuration from environment variables.
// It loads .env file if present (for local development).
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", DefaultPort),
		Env:           getEnv("ENV", DefaultEnv),
		LogLevel:      getEnv("LOG_LEVEL", DefaultLogLevel),
		DatabaseURL:   os.Getenv("DATABASE_URL"), // Optional, uses in-memory if not set
		SweepInterval: getEnvDuration("RANKING_SWEEP_INTERVAL", DefaultSweepInterval),
		AdminSecret:   os.Getenv("ADMIN_SECRET"),
		RateLimitRPM:  int(getEnvInt64("RATE_LIMIT_RPM", int64(DefaultRateLimit))),
		OTLPEndpoint:  os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is coherent
func (c *Config) Validate() error {
	if c.SweepInterval < time.Minute {
		return fmt.Errorf("RANKING_SWEEP_INTERVAL must be at least 1m, got %s", c.SweepInterval)
	}
	if c.RateLimitRPM <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPM must be positive, got %d", c.RateLimitRPM)
	}
	if c.IsProduction() && c.AdminSecret == "" {
		return fmt.Errorf("ADMIN_SECRET is required in production")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
