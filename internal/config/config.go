// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir            string // Base directory for the database (defaults to "./data")
	Port               int
	LogLevel           string
	DevMode            bool
	ReoptimizeSchedule string // cron expression for the scheduled re-optimization run
}

// Load reads configuration from environment variables. A .env file in the
// working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "")
	if dataDir == "" {
		if _, err := os.Stat("../data"); err == nil {
			dataDir = "../data"
		} else {
			dataDir = "./data"
		}
	}

	cfg := &Config{
		DataDir:            dataDir,
		Port:               getEnvAsInt("PORT", 8090),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DevMode:            getEnvAsBool("DEV_MODE", false),
		ReoptimizeSchedule: getEnv("REOPTIMIZE_SCHEDULE", "0 0 6 * * *"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
