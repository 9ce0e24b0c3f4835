package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort          string
	DatabaseURL         string
	RedisURL            string
	LogLevel            string
	LogFormat           string
	PageSize            int
	MaxPageSize         int
	CapturedAtTolerance time.Duration
	LastLocationTTL     time.Duration
}

// LoadConfig reads configuration from the environment. When CONFIG_FILE is
// set, values from that YAML file are used for keys missing in the environment.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("PAGE_SIZE", 50)
	v.SetDefault("MAX_PAGE_SIZE", 500)
	v.SetDefault("CAPTURED_AT_TOLERANCE", "5m")
	v.SetDefault("LAST_LOCATION_TTL", "24h")

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	tolerance, err := time.ParseDuration(v.GetString("CAPTURED_AT_TOLERANCE"))
	if err != nil || tolerance < 0 {
		return nil, errors.New("invalid CAPTURED_AT_TOLERANCE format")
	}
	ttl, err := time.ParseDuration(v.GetString("LAST_LOCATION_TTL"))
	if err != nil || ttl <= 0 {
		return nil, errors.New("invalid LAST_LOCATION_TTL format")
	}

	cfg := &Config{
		ServerPort:          v.GetString("SERVER_PORT"),
		DatabaseURL:         v.GetString("DATABASE_URL"),
		RedisURL:            v.GetString("REDIS_URL"),
		LogLevel:            strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat:           strings.ToLower(v.GetString("LOG_FORMAT")),
		PageSize:            v.GetInt("PAGE_SIZE"),
		MaxPageSize:         v.GetInt("MAX_PAGE_SIZE"),
		CapturedAtTolerance: tolerance,
		LastLocationTTL:     ttl,
	}

	// Validate required fields
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.PageSize <= 0 {
		return nil, errors.New("PAGE_SIZE must be positive")
	}
	if cfg.MaxPageSize < cfg.PageSize {
		return nil, errors.New("MAX_PAGE_SIZE must not be smaller than PAGE_SIZE")
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return nil, fmt.Errorf("unsupported LOG_FORMAT %q", cfg.LogFormat)
	}

	return cfg, nil
}
