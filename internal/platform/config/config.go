// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile      = ".env"
	defaultPort         = "8080"
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 120 * time.Second
	defaultStoreBackend = "file"
	defaultDataDir      = "data"
	defaultTokenTTL     = 24 * time.Hour
	defaultReplyDelay   = 800 * time.Millisecond
)

// Store backends accepted by SHOP_STORE_BACKEND.
const (
	StoreBackendMemory = "memory"
	StoreBackendFile   = "file"
	StoreBackendRedis  = "redis"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Auth    AuthConfig
	Backend BackendConfig
	Chat    ChatConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// StoreConfig selects and parameterises the kv backend.
type StoreConfig struct {
	Backend     string
	DataDir     string
	RedisAddr   string
	RedisPrefix string
}

// AuthConfig holds session token parameters.
type AuthConfig struct {
	Secret   string
	TokenTTL time.Duration
}

// BackendConfig points at the upstream content API.
type BackendConfig struct {
	BaseURL string
}

// ChatConfig tunes the heritage assistant.
type ChatConfig struct {
	ReplyDelay time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present; real environment variables win.
func Load() (Config, error) {
	// Ignore a missing .env; it only exists in local setups.
	_ = godotenv.Load(defaultEnvFile)

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault("SHOP_SERVER_PORT", defaultPort),
			ReadTimeout:  durationWithDefault("SHOP_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault("SHOP_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault("SHOP_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Store: StoreConfig{
			Backend:     strings.ToLower(stringWithDefault("SHOP_STORE_BACKEND", defaultStoreBackend)),
			DataDir:     stringWithDefault("SHOP_STORE_DATA_DIR", defaultDataDir),
			RedisAddr:   stringWithDefault("SHOP_STORE_REDIS_ADDR", "localhost:6379"),
			RedisPrefix: stringWithDefault("SHOP_STORE_REDIS_PREFIX", ""),
		},
		Auth: AuthConfig{
			Secret:   stringWithDefault("SHOP_AUTH_SECRET", ""),
			TokenTTL: durationWithDefault("SHOP_AUTH_TOKEN_TTL", defaultTokenTTL),
		},
		Backend: BackendConfig{
			BaseURL: stringWithDefault("SHOP_BACKEND_BASE_URL", ""),
		},
		Chat: ChatConfig{
			ReplyDelay: durationWithDefault("SHOP_CHAT_REPLY_DELAY", defaultReplyDelay),
		},
	}

	switch cfg.Store.Backend {
	case StoreBackendMemory, StoreBackendFile, StoreBackendRedis:
	default:
		return Config{}, fmt.Errorf("config: unknown store backend %q", cfg.Store.Backend)
	}
	if cfg.Auth.Secret == "" {
		return Config{}, errors.New("config: SHOP_AUTH_SECRET is required")
	}

	return cfg, nil
}

func stringWithDefault(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func durationWithDefault(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
