package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store driver names accepted in STORE_DRIVER.
const (
	StoreDynamo   = "dynamo"
	StorePostgres = "postgres"
)

// Config holds all environment-derived settings for the server.
type Config struct {
	ServerPort string

	JWTSecret  string
	TokenTTL   time.Duration
	AdminEmail string

	AllowedOrigins  []string
	APIKey          string // empty disables the API key check
	RateLimitMax    int
	RateLimitWindow time.Duration

	StoreDriver string
	Dynamo      DynamoConfig
	Postgres    DBConfig
}

// DynamoConfig holds settings for the DynamoDB credential store.
type DynamoConfig struct {
	Table    string
	Region   string
	Endpoint string // optional override, e.g. a DAX or local endpoint
}

// Load reads the server configuration from environment variables.
func Load() (*Config, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET not set in environment")
	}

	cfg := &Config{
		ServerPort:      getEnv("PORT", "5000"),
		JWTSecret:       secret,
		TokenTTL:        time.Duration(getEnvInt("JWT_EXPIRATION_MINUTES", 60)) * time.Minute,
		AdminEmail:      os.Getenv("ADMIN_EMAIL"),
		APIKey:          os.Getenv("API_KEY"),
		RateLimitMax:    getEnvInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow: time.Duration(getEnvInt("RATE_LIMIT_WINDOW_MINUTES", 15)) * time.Minute,
		StoreDriver:     getEnv("STORE_DRIVER", StoreDynamo),
		Dynamo: DynamoConfig{
			Table:    getEnv("USERS_TABLE", "bookvault-users"),
			Region:   getEnv("AWS_REGION", "us-east-1"),
			Endpoint: os.Getenv("DYNAMO_ENDPOINT"),
		},
	}

	if cfg.StoreDriver != StoreDynamo && cfg.StoreDriver != StorePostgres {
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	// Comma-separated origin allow-list, e.g. "http://localhost:5173,https://bookvault.app".
	for _, origin := range strings.Split(os.Getenv("FRONTEND_URL"), ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}
