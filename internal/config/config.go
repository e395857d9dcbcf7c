package config

import (
	"fmt"
	"os"
	"time"
)

// Cache backend names accepted by CacheConfig.Backend.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
)

// Config holds the application configuration
type Config struct {
	API   APIConfig   `json:"api"`
	Cache CacheConfig `json:"cache"`
	Mock  MockConfig  `json:"mock"`
}

// APIConfig holds remote service configuration
type APIConfig struct {
	Host      string        `json:"host"`
	Key       string        `json:"key"`
	AccountID int           `json:"account_id"`
	Timeout   time.Duration `json:"timeout"`
}

// CacheConfig holds result cache configuration
type CacheConfig struct {
	Enabled          bool   `json:"enabled"`
	Root             string `json:"root"`
	Backend          string `json:"backend"`
	CompressionLevel int    `json:"compression_level"`
}

// MockConfig holds mock API server configuration
type MockConfig struct {
	ListenAddr string `json:"listen_addr"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Host:      getEnv("APMFETCH_HOST", "api.newrelic.com"),
			Key:       getEnv("APMFETCH_API_KEY", ""),
			AccountID: getEnvInt("APMFETCH_ACCOUNT_ID", 0),
			Timeout:   time.Duration(getEnvInt("APMFETCH_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Cache: CacheConfig{
			Enabled:          getEnvBool("APMFETCH_CACHE", true),
			Root:             getEnv("APMFETCH_CACHE_DIR", "./cache"),
			Backend:          getEnv("APMFETCH_CACHE_BACKEND", BackendFile),
			CompressionLevel: getEnvInt("APMFETCH_COMPRESSION_LEVEL", 2),
		},
		Mock: MockConfig{
			ListenAddr: getEnv("APMFETCH_MOCK_ADDR", ":8780"),
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.API.Host == "" {
		return fmt.Errorf("API host is required")
	}

	if c.Cache.Root == "" {
		return fmt.Errorf("cache directory is required")
	}

	if c.Cache.Backend != BackendFile && c.Cache.Backend != BackendBadger {
		return fmt.Errorf("cache backend must be %q or %q", BackendFile, BackendBadger)
	}

	if c.Cache.CompressionLevel < 1 || c.Cache.CompressionLevel > 4 {
		return fmt.Errorf("compression level must be between 1 and 4")
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}
