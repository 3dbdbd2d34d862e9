package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Model    ModelConfig    `yaml:"model"`
}

type ServerConfig struct {
	Port          int     `yaml:"port"`
	LogLevel      string  `yaml:"log_level"`
	RatePerSecond float64 `yaml:"rate_per_second"`
	RateBurst     int     `yaml:"rate_burst"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
}

type CacheConfig struct {
	TTLSeconds   int `yaml:"ttl_seconds"`
	SweepSeconds int `yaml:"sweep_seconds"`
}

// TTL is the configured entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// SweepInterval is how often expired entries are swept.
func (c CacheConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepSeconds) * time.Second
}

type ModelConfig struct {
	// ArtifactPath points at the trained classifier artifact. Empty means
	// heuristic-only scoring.
	ArtifactPath string `yaml:"artifact_path"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          8000,
			LogLevel:      "info",
			RatePerSecond: 20,
			RateBurst:     40,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "focusd",
			User:     "focusd",
			SSLMode:  "disable",
		},
		Cache: CacheConfig{
			TTLSeconds:   3600,
			SweepSeconds: 60,
		},
	}
}

// Load reads a YAML config file over the defaults, then applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	LoadFromEnv(cfg)
	return cfg, nil
}
