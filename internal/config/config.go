// Package config reads the front end's settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Cache backends for the local history copy.
const (
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
	CacheMemory = "memory"
)

type Config struct {
	Addr           string
	ServiceURL     string
	RequestTimeout time.Duration
	ErrorDisplay   time.Duration
	SessionTTL     time.Duration
	Cache          string
	CachePath      string
	RedisAddr      string
	LogFile        string
	OTelEnabled    bool
}

func Default() Config {
	return Config{
		Addr:           ":8080",
		ServiceURL:     "http://127.0.0.1:5000",
		RequestTimeout: 10 * time.Second,
		ErrorDisplay:   3 * time.Second,
		SessionTTL:     30 * time.Minute,
		Cache:          CacheSQLite,
		CachePath:      "calculator.db",
		RedisAddr:      "localhost:6379",
		LogFile:        "calc.log",
		OTelEnabled:    true,
	}
}

// Load starts from Default and applies the CALC_* environment variables.
// Unset or empty variables keep their defaults.
func Load() (Config, error) {
	cfg := Default()

	setString(&cfg.Addr, "CALC_ADDR")
	setString(&cfg.ServiceURL, "CALC_SERVICE_URL")
	setString(&cfg.CachePath, "CALC_CACHE_PATH")
	setString(&cfg.RedisAddr, "CALC_REDIS_ADDR")
	setString(&cfg.LogFile, "CALC_LOG_FILE")

	if err := setDuration(&cfg.RequestTimeout, "CALC_REQUEST_TIMEOUT"); err != nil {
		return Config{}, err
	}
	if err := setDuration(&cfg.ErrorDisplay, "CALC_ERROR_DISPLAY"); err != nil {
		return Config{}, err
	}
	if err := setDuration(&cfg.SessionTTL, "CALC_SESSION_TTL"); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("CALC_OTEL_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("CALC_OTEL_ENABLED: %w", err)
		}
		cfg.OTelEnabled = enabled
	}

	if v := os.Getenv("CALC_CACHE"); v != "" {
		cfg.Cache = strings.ToLower(v)
	}
	switch cfg.Cache {
	case CacheSQLite, CacheRedis, CacheMemory:
	default:
		return Config{}, fmt.Errorf("CALC_CACHE: unknown backend %q", cfg.Cache)
	}

	cfg.ServiceURL = strings.TrimRight(cfg.ServiceURL, "/")
	return cfg, nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s: must be positive, got %s", key, d)
	}

	*dst = d
	return nil
}
