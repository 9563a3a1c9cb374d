package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "API_BASE_URL", "ADMIN_API_BASE_URL", "API_TIMEOUT", "TIMEZONE", "BOOKING_WINDOW_MONTHS", "CORS_ALLOWED_ORIGINS", "OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.APIBaseURL != "http://localhost:3000/api" {
		t.Fatalf("expected default api base, got %s", cfg.APIBaseURL)
	}
	if cfg.AdminAPIBaseURL != cfg.APIBaseURL {
		t.Fatalf("expected admin base to follow api base, got %s", cfg.AdminAPIBaseURL)
	}
	if cfg.APITimeout != 15*time.Second {
		t.Fatalf("expected default api timeout, got %s", cfg.APITimeout)
	}
	if cfg.BookingWindowMonth != 3 {
		t.Fatalf("expected 3 month booking window, got %d", cfg.BookingWindowMonth)
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Fatalf("expected no cors origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.OTelEnabled || cfg.OTLPEndpoint != "localhost:4317" {
		t.Fatalf("expected tracing off with local endpoint, got %v %s", cfg.OTelEnabled, cfg.OTLPEndpoint)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("API_BASE_URL", "https://api.slybarber.example/v1")
	t.Setenv("ADMIN_API_BASE_URL", "https://admin.slybarber.example/api")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("ADMIN_SESSION_TTL", "30m")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("BOOKING_RATE_LIMIT", "2.5")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.AdminAPIBaseURL != "https://admin.slybarber.example/api" {
		t.Fatalf("expected admin base override, got %s", cfg.AdminAPIBaseURL)
	}
	if cfg.APITimeout != 3*time.Second {
		t.Fatalf("expected timeout override, got %s", cfg.APITimeout)
	}
	if cfg.AdminSessionTTL != 30*time.Minute {
		t.Fatalf("expected session ttl override, got %s", cfg.AdminSessionTTL)
	}
	if !cfg.RedisTLS {
		t.Fatalf("expected redis tls enabled")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSAllowedOrigins)
	}
	if cfg.BookingRateLimit != 2.5 {
		t.Fatalf("expected rate override, got %v", cfg.BookingRateLimit)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("API_TIMEOUT", "soon")
	t.Setenv("BOOKING_WINDOW_MONTHS", "three")
	cfg := Load()
	if cfg.APITimeout != 15*time.Second {
		t.Fatalf("expected default timeout, got %s", cfg.APITimeout)
	}
	if cfg.BookingWindowMonth != 3 {
		t.Fatalf("expected default window, got %d", cfg.BookingWindowMonth)
	}
}

func TestLocation(t *testing.T) {
	cfg := &Config{Timezone: "Not/AZone"}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC fallback")
	}
	var nilCfg *Config
	if nilCfg.Location() != time.UTC {
		t.Fatalf("expected UTC for nil config")
	}
}
