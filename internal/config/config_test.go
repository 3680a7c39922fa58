package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"CALC_ADDR", "CALC_SERVICE_URL", "CALC_REQUEST_TIMEOUT", "CALC_ERROR_DISPLAY", "CALC_SESSION_TTL",
		"CALC_CACHE", "CALC_CACHE_PATH", "CALC_REDIS_ADDR", "CALC_LOG_FILE", "CALC_OTEL_ENABLED",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CALC_ADDR", ":9090")
	t.Setenv("CALC_SERVICE_URL", "http://calc:5000/")
	t.Setenv("CALC_REQUEST_TIMEOUT", "2s")
	t.Setenv("CALC_ERROR_DISPLAY", "500ms")
	t.Setenv("CALC_SESSION_TTL", "1h")
	t.Setenv("CALC_CACHE", "Redis")
	t.Setenv("CALC_REDIS_ADDR", "redis:6379")
	t.Setenv("CALC_OTEL_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Addr != ":9090" {
		t.Fatalf("unexpected addr %q", cfg.Addr)
	}
	if cfg.ServiceURL != "http://calc:5000" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.ServiceURL)
	}
	if cfg.RequestTimeout != 2*time.Second || cfg.ErrorDisplay != 500*time.Millisecond {
		t.Fatalf("unexpected durations %s %s", cfg.RequestTimeout, cfg.ErrorDisplay)
	}
	if cfg.SessionTTL != time.Hour {
		t.Fatalf("unexpected session ttl %s", cfg.SessionTTL)
	}
	if cfg.Cache != CacheRedis || cfg.RedisAddr != "redis:6379" {
		t.Fatalf("unexpected cache settings %q %q", cfg.Cache, cfg.RedisAddr)
	}
	if cfg.OTelEnabled {
		t.Fatal("expected OTel disabled")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"CALC_REQUEST_TIMEOUT", "soon"},
		{"CALC_ERROR_DISPLAY", "-1s"},
		{"CALC_SESSION_TTL", "0s"},
		{"CALC_CACHE", "postgres"},
		{"CALC_OTEL_ENABLED", "maybe"},
	}

	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tc.key, tc.value)
			}
		})
	}
}
