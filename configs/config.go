package configs

import (
	"os"
	"strconv"
)

// Store drivers
const (
	StoreDriverFile     = "file"
	StoreDriverPostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Gemini GeminiConfig
	Quota  QuotaConfig
	Log    LogConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port    string
	OpsPort string
	Env     string
}

// StoreConfig holds persistence configuration
type StoreConfig struct {
	Driver      string // "file" or "postgres"
	DataDir     string
	DatabaseURL string
}

// GeminiConfig holds analysis provider configuration
type GeminiConfig struct {
	APIKey string
	Model  string
}

// QuotaConfig holds the daily usage quota
type QuotaConfig struct {
	FreeDailyLimit int
}

// LogConfig holds logging configuration
type LogConfig struct {
	File string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			OpsPort: getEnv("OPS_PORT", "8081"),
			Env:     getEnv("GO_ENV", "development"),
		},
		Store: StoreConfig{
			Driver:      getEnv("STORE_DRIVER", StoreDriverFile),
			DataDir:     getEnv("DATA_DIR", "./data"),
			DatabaseURL: getEnv("DATABASE_URL", ""),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", ""),
		},
		Quota: QuotaConfig{
			FreeDailyLimit: getEnvInt("FREE_DAILY_LIMIT", 3),
		},
		Log: LogConfig{
			File: getEnv("LOG_FILE", ""),
		},
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
