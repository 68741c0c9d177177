package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabasePath string
	ResetOnStart bool
	LogLevel     string
}

// Load reads configuration from the environment. ResetOnStart defaults
// to true: the store drops and recreates the users table on startup
// unless RESET_ON_START=false is set.
func Load() *Config {
	// Load .env file if it exists (ignores error if not found)
	_ = godotenv.Load()

	return &Config{
		DatabasePath: getEnv("DATABASE_PATH", "a.db"),
		ResetOnStart: getBoolEnv("RESET_ON_START", true),
		LogLevel:     getEnv("LOG_LEVEL", "warning"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
