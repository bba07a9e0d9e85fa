// Package config reads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the CLI needs to reach the platform.
type Config struct {
	BaseURL   string
	Token     string
	Timeout   time.Duration
	LogLevel  string
	PageLimit int
}

const (
	defaultTimeout   = 30 * time.Second
	defaultLogLevel  = "info"
	defaultPageLimit = 50
)

// Load reads configuration from the environment, after loading a .env file
// when one is present. A missing .env is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	return &Config{
		BaseURL:   readEnv("FACTURIO_API_URL", ""),
		Token:     readEnv("FACTURIO_TOKEN", ""),
		Timeout:   parseDuration("FACTURIO_TIMEOUT", defaultTimeout),
		LogLevel:  readEnv("FACTURIO_LOG_LEVEL", defaultLogLevel),
		PageLimit: parseInt("FACTURIO_PAGE_LIMIT", defaultPageLimit),
	}, nil
}

func readEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func parseInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func parseDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
