package config

import (
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("SHOP_AUTH_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("unexpected port %q", cfg.Server.Port)
	}
	if cfg.Store.Backend != StoreBackendFile {
		t.Fatalf("unexpected backend %q", cfg.Store.Backend)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Fatalf("unexpected token ttl %s", cfg.Auth.TokenTTL)
	}
}

func TestLoadReadsEnvironmentOverrides(t *testing.T) {
	t.Setenv("SHOP_AUTH_SECRET", "test-secret")
	t.Setenv("SHOP_SERVER_PORT", "9090")
	t.Setenv("SHOP_STORE_BACKEND", "redis")
	t.Setenv("SHOP_STORE_REDIS_ADDR", "redis:6379")
	t.Setenv("SHOP_CHAT_REPLY_DELAY", "2s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("unexpected port %q", cfg.Server.Port)
	}
	if cfg.Store.Backend != StoreBackendRedis || cfg.Store.RedisAddr != "redis:6379" {
		t.Fatalf("unexpected store config %+v", cfg.Store)
	}
	if cfg.Chat.ReplyDelay != 2*time.Second {
		t.Fatalf("unexpected reply delay %s", cfg.Chat.ReplyDelay)
	}
}

func TestLoadRejectsMissingSecret(t *testing.T) {
	t.Setenv("SHOP_AUTH_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing secret")
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("SHOP_AUTH_SECRET", "test-secret")
	t.Setenv("SHOP_STORE_BACKEND", "cassandra")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestDurationWithDefaultIgnoresGarbage(t *testing.T) {
	t.Setenv("SHOP_SERVER_READ_TIMEOUT", "not-a-duration")
	if got := durationWithDefault("SHOP_SERVER_READ_TIMEOUT", 15*time.Second); got != 15*time.Second {
		t.Fatalf("expected fallback, got %s", got)
	}
}
