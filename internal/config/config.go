// Package config loads service configuration from the environment. A .env
// file is honoured when present so local development matches deployment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ServerConfig holds the listen addresses for both transport surfaces.
type ServerConfig struct {
	HTTPAddr        string
	GRPCAddr        string
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds the postgres connection settings. An empty DSN selects
// the in-memory store.
type DatabaseConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MigrateOnStart  bool
}

// AuthConfig holds token signing settings.
type AuthConfig struct {
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// LoggingConfig holds log level and format.
type LoggingConfig struct {
	Level  string
	Format string
}

// RateLimitConfig bounds request rates per client on the REST surface.
type RateLimitConfig struct {
	Enabled bool
	Rate    float64
	Burst   int
}

// Config is the root configuration consumed at startup.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Logging   LoggingConfig
	RateLimit RateLimitConfig
}

// Load reads configuration from the environment. A missing JWT_SECRET is a
// fatal configuration error; the service never falls back to a built-in
// signing secret.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			HTTPAddr:        envOr("SERVER_HTTP_ADDR", ":8080"),
			GRPCAddr:        envOr("SERVER_GRPC_ADDR", ":50051"),
			ShutdownTimeout: envDurationOr("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			DSN:             strings.TrimSpace(os.Getenv("DATABASE_URL")),
			MaxOpenConns:    envIntOr("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envIntOr("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDurationOr("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			MigrateOnStart:  envBoolOr("DB_MIGRATE_ON_START", true),
		},
		Auth: AuthConfig{
			JWTSecret:  strings.TrimSpace(os.Getenv("JWT_SECRET")),
			AccessTTL:  envDurationOr("JWT_ACCESS_TTL", 24*time.Hour),
			RefreshTTL: envDurationOr("JWT_REFRESH_TTL", 30*24*time.Hour),
		},
		Logging: LoggingConfig{
			Level:  envOr("LOG_LEVEL", "info"),
			Format: envOr("LOG_FORMAT", "text"),
		},
		RateLimit: RateLimitConfig{
			Enabled: envBoolOr("RATE_LIMIT_ENABLED", false),
			Rate:    envFloatOr("RATE_LIMIT_RATE", 20),
			Burst:   envIntOr("RATE_LIMIT_BURST", 40),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Auth.AccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be positive")
	}
	if c.Auth.RefreshTTL <= 0 {
		return fmt.Errorf("JWT_REFRESH_TTL must be positive")
	}
	if c.Server.HTTPAddr == "" || c.Server.GRPCAddr == "" {
		return fmt.Errorf("server listen addresses must not be empty")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return fallback
}
