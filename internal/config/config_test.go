package config

import (
	"testing"
	"time"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error without JWT_SECRET")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.HTTPAddr != ":8080" || cfg.Server.GRPCAddr != ":50051" {
		t.Fatalf("server defaults = %+v", cfg.Server)
	}
	if cfg.Auth.AccessTTL != 24*time.Hour {
		t.Fatalf("access ttl = %s, want 24h", cfg.Auth.AccessTTL)
	}
	if cfg.Auth.RefreshTTL != 30*24*time.Hour {
		t.Fatalf("refresh ttl = %s, want 720h", cfg.Auth.RefreshTTL)
	}
	if cfg.Database.DSN != "" {
		t.Fatalf("dsn = %q, want empty", cfg.Database.DSN)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_HTTP_ADDR", ":9999")
	t.Setenv("JWT_ACCESS_TTL", "1h")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_RATE", "5.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.HTTPAddr != ":9999" {
		t.Fatalf("http addr = %s", cfg.Server.HTTPAddr)
	}
	if cfg.Auth.AccessTTL != time.Hour {
		t.Fatalf("access ttl = %s, want 1h", cfg.Auth.AccessTTL)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.Rate != 5.5 {
		t.Fatalf("rate limit = %+v", cfg.RateLimit)
	}
}
