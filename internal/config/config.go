package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Backend API. AdminAPIBaseURL falls back to APIBaseURL.
	APIBaseURL      string
	AdminAPIBaseURL string
	APITimeout      time.Duration

	// Admin session. AdminPassword is a shared secret placeholder until the
	// backend issues its own credentials.
	AdminPassword      string
	AdminSessionSecret string
	AdminSessionTTL    time.Duration

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	CORSAllowedOrigins []string
	Timezone           string
	BookingWindowMonth int
	BookingRateLimit   float64
	BookingRateBurst   int
	VisitorIdleTTL     time.Duration

	// Tracing. Spans are exported over OTLP/gRPC only when enabled.
	OTelEnabled     bool
	OTLPEndpoint    string
	OTelSampleRatio float64
}

// Load reads configuration from environment variables
func Load() *Config {
	apiBase := getEnv("API_BASE_URL", "http://localhost:3000/api")
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		APIBaseURL:      apiBase,
		AdminAPIBaseURL: getEnv("ADMIN_API_BASE_URL", apiBase),
		APITimeout:      getEnvAsDuration("API_TIMEOUT", 15*time.Second),

		AdminPassword:      getEnv("ADMIN_PASSWORD", ""),
		AdminSessionSecret: getEnv("ADMIN_SESSION_SECRET", ""),
		AdminSessionTTL:    getEnvAsDuration("ADMIN_SESSION_TTL", 8*time.Hour),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		Timezone:           getEnv("TIMEZONE", "America/Bogota"),
		BookingWindowMonth: getEnvAsInt("BOOKING_WINDOW_MONTHS", 3),
		BookingRateLimit:   getEnvAsFloat("BOOKING_RATE_LIMIT", 0.5),
		BookingRateBurst:   getEnvAsInt("BOOKING_RATE_BURST", 5),
		VisitorIdleTTL:     getEnvAsDuration("VISITOR_IDLE_TTL", 2*time.Hour),

		OTelEnabled:     getEnvAsBool("OTEL_ENABLED", false),
		OTLPEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTelSampleRatio: getEnvAsFloat("OTEL_SAMPLING_RATIO", 1),
	}
}

// Location resolves Timezone, falling back to UTC when it is unknown.
func (c *Config) Location() *time.Location {
	if c == nil || strings.TrimSpace(c.Timezone) == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
