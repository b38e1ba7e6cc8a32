package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	NodeEnv      string
	Port         string
	InstanceID   string
	BridgeSecret string // signs UI tokens for /api/local; empty disables the check
	Remote       RemoteConfig
	Cache        CacheConfig
}

// RemoteConfig describes the REST service holding the authoritative collections
type RemoteConfig struct {
	BaseURL   string
	Timeout   time.Duration
	APIKey    string
	JWTSecret string // shared with the service; empty sends no bearer token
}

// CacheConfig selects and sizes the local cache backend
type CacheConfig struct {
	Driver   string // sqlite, postgres, memory
	Path     string // sqlite file
	MaxBytes int64  // 0 = unlimited
	Database DatabaseConfig
}

// DatabaseConfig holds PostgreSQL configuration for the postgres cache driver
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Silent   bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	baseURL := strings.TrimRight(os.Getenv("REMOTE_BASE_URL"), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("REMOTE_BASE_URL is required")
	}

	timeout, err := time.ParseDuration(getEnv("REMOTE_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REMOTE_TIMEOUT: %w", err)
	}

	maxBytes, err := strconv.ParseInt(getEnv("CACHE_MAX_BYTES", "0"), 10, 64)
	if err != nil || maxBytes < 0 {
		return nil, fmt.Errorf("invalid CACHE_MAX_BYTES: %q", os.Getenv("CACHE_MAX_BYTES"))
	}

	driver := strings.ToLower(getEnv("CACHE_DRIVER", "sqlite"))
	switch driver {
	case "sqlite", "postgres", "memory":
	default:
		return nil, fmt.Errorf("unsupported CACHE_DRIVER: %s", driver)
	}

	return &Config{
		NodeEnv:      getEnv("NODE_ENV", "development"),
		Port:         getEnv("PORT", "3211"),
		InstanceID:   getEnv("INSTANCE_ID", defaultInstanceID()),
		BridgeSecret: os.Getenv("BRIDGE_JWT_SECRET"),
		Remote: RemoteConfig{
			BaseURL:   baseURL,
			Timeout:   timeout,
			APIKey:    os.Getenv("REMOTE_API_KEY"),
			JWTSecret: os.Getenv("REMOTE_JWT_SECRET"),
		},
		Cache: CacheConfig{
			Driver:   driver,
			Path:     getEnv("CACHE_PATH", "./ecktms_cache.db"),
			MaxBytes: maxBytes,
			Database: DatabaseConfig{
				Host:     getEnv("PG_HOST", "localhost"),
				Port:     getEnv("PG_PORT", "5432"),
				Username: getEnv("PG_USERNAME", "postgres"),
				Password: os.Getenv("PG_PASSWORD"),
				Database: getEnv("PG_DATABASE", "ecktms_cache"),
				Silent:   getEnv("DB_SILENT", "true") == "true",
			},
		},
	}, nil
}

// defaultInstanceID names the instance after the host
func defaultInstanceID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "ecktms"
	}
	return "ecktms-" + strings.ToLower(host)
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
