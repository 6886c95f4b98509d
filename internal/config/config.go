package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	StoreDriverSQL    = "sql"
	StoreDriverRedis  = "redis"
	StoreDriverMemory = "memory"
)

type Config struct {
	// Server configuration
	Port string
	Mode string
	Env  string

	// Midtrans configuration
	MidtransServerKey    string
	MidtransClientKey    string
	MidtransIsProduction bool

	// Store configuration
	StoreDriver string
	DatabaseURL string
	SQLitePath  string
	RedisURL    string

	// HTTP configuration
	CORSAllowedOrigins []string
	APIKey             string

	// Downstream callback configuration
	CallbackURL    string
	CallbackSecret string
}

// Load reads configuration from the environment, loading .env first if present.
func Load() (*Config, error) {
	// A missing .env file is fine
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getEnv("PORT", "3000"),
		Mode:                 getEnv("GIN_MODE", "debug"),
		Env:                  getEnv("APP_ENV", "production"),
		MidtransServerKey:    getEnv("MIDTRANS_SERVER_KEY", ""),
		MidtransClientKey:    getEnv("MIDTRANS_CLIENT_KEY", ""),
		MidtransIsProduction: getEnv("MIDTRANS_IS_PRODUCTION", "false") == "true",
		StoreDriver:          strings.ToLower(getEnv("STORE_DRIVER", StoreDriverSQL)),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		SQLitePath:           getEnv("SQLITE_PATH", "payment-relay.db"),
		RedisURL:             getEnv("REDIS_URL", "redis://localhost:6379/0"),
		CORSAllowedOrigins:   getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		APIKey:               getEnv("RELAY_API_KEY", ""),
		CallbackURL:          getEnv("TRANSACTION_CALLBACK_URL", ""),
		CallbackSecret:       getEnv("TRANSACTION_CALLBACK_SECRET", ""),
	}

	switch cfg.StoreDriver {
	case StoreDriverSQL, StoreDriverRedis, StoreDriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

// IsDevelopment reports whether internal error details may be returned to clients.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
