package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	APIPort  string
	LogLevel string

	APIMaxConnections   int
	APIRateLimitRPS     float64
	APIRateLimitBurst   int
	APIMaxInFlight      int
	APIBackpressureWait time.Duration

	OpenAPIValidationEnabled bool

	UploadMaxBytes  int64
	UploadDelay     time.Duration
	ProcessingDelay time.Duration
	SeedDemoData    bool

	// Empty NATSURL disables state event publishing.
	NATSURL     string
	NATSSubject string

	MCPEnabled   bool
	SSEKeepalive time.Duration
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		APIMaxConnections:   mustEnvInt("API_MAX_CONNECTIONS", 256),
		APIRateLimitRPS:     mustEnvFloat("API_RATE_LIMIT_RPS", 50),
		APIRateLimitBurst:   mustEnvInt("API_RATE_LIMIT_BURST", 100),
		APIMaxInFlight:      mustEnvInt("API_MAX_IN_FLIGHT", 64),
		APIBackpressureWait: mustEnvDuration("API_BACKPRESSURE_WAIT", 250*time.Millisecond),

		OpenAPIValidationEnabled: mustEnvBool("OPENAPI_VALIDATION_ENABLED", true),

		UploadMaxBytes:  int64(mustEnvInt("UPLOAD_MAX_BYTES", 10<<20)),
		UploadDelay:     mustEnvDuration("UPLOAD_DELAY", 2*time.Second),
		ProcessingDelay: mustEnvDuration("PROCESSING_DELAY", 3*time.Second),
		SeedDemoData:    mustEnvBool("SEED_DEMO_DATA", true),

		NATSURL:     mustEnv("NATS_URL", ""),
		NATSSubject: mustEnv("NATS_SUBJECT", "docestate.state.changed"),

		MCPEnabled:   mustEnvBool("MCP_ENABLED", true),
		SSEKeepalive: mustEnvDuration("SSE_KEEPALIVE", 15*time.Second),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
