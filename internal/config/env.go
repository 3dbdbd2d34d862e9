package config

import (
	"os"
	"strconv"
)

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv(cfg *Config) {
	if port := os.Getenv("FOCUSD_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}

	if logLevel := os.Getenv("FOCUSD_LOG_LEVEL"); logLevel != "" {
		cfg.Server.LogLevel = logLevel
	}

	if host := os.Getenv("FOCUSD_DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("FOCUSD_DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Database.Port = p
		}
	}
	if name := os.Getenv("FOCUSD_DB_NAME"); name != "" {
		cfg.Database.Database = name
	}
	if user := os.Getenv("FOCUSD_DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if password := os.Getenv("FOCUSD_DB_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}

	// Cache settings
	if ttl := os.Getenv("FOCUSD_CACHE_TTL"); ttl != "" {
		if seconds, err := strconv.Atoi(ttl); err == nil {
			cfg.Cache.TTLSeconds = seconds
		}
	}

	if path := os.Getenv("FOCUSD_MODEL_PATH"); path != "" {
		cfg.Model.ArtifactPath = path
	}
}

// GetEnvOrDefault returns environment variable or default value
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
