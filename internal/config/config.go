// Package config provides configuration loading and validation for the
// job funnel service.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the runtime settings read from the environment. Business
// rules and thresholds are NOT here; those live in the database and are
// operator-configurable at runtime.
type Config struct {
	// ListenAddr is the HTTP bind address, e.g. ":8080".
	ListenAddr string

	// DatabaseURL is the PostgreSQL connection URL.
	DatabaseURL string

	// RedisURL enables the seen-URL cache when set.
	RedisURL string

	// GeminiAPIKey enables proposal generation when set.
	GeminiAPIKey string

	// IngestSharedSecret gates ingestion endpoints via the
	// X-Ingest-Secret header. Empty disables the check.
	IngestSharedSecret string

	// WebhookBearerToken gates the webhook endpoint via a Bearer token.
	// Falls back to IngestSharedSecret when empty.
	WebhookBearerToken string

	// SweepSchedule is the cron expression for the background sweep.
	SweepSchedule string

	// OperatorUsername and OperatorPasswordHash authenticate the
	// operator for the config API. An empty hash disables login.
	OperatorUsername     string
	OperatorPasswordHash string

	// RetentionDays controls how long unseen raw jobs are kept before
	// the sweep purges them. Zero disables purging.
	RetentionDays int

	// SeenTTLHours is the Redis seen-cache window.
	SeenTTLHours int
}

// Load reads configuration from environment variables. Only DATABASE_URL
// is required; everything else has a default or disables its feature.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:         envOr("LISTEN_ADDR", ":8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		IngestSharedSecret: os.Getenv("INGEST_SHARED_SECRET"),
		WebhookBearerToken: os.Getenv("WEBHOOK_BEARER_TOKEN"),
		SweepSchedule:      envOr("SWEEP_SCHEDULE", "@every 1h"),

		OperatorUsername:     envOr("OPERATOR_USERNAME", "admin"),
		OperatorPasswordHash: os.Getenv("OPERATOR_PASSWORD_HASH"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set")
	}

	var err error
	if cfg.RetentionDays, err = envInt("JOB_RETENTION_DAYS", 0); err != nil {
		return nil, err
	}
	if cfg.SeenTTLHours, err = envInt("SEEN_TTL_HOURS", 24); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WebhookToken returns the token the webhook endpoint accepts,
// preferring the dedicated bearer token over the shared secret.
func (c *Config) WebhookToken() string {
	if c.WebhookBearerToken != "" {
		return c.WebhookBearerToken
	}
	return c.IngestSharedSecret
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.RetentionDays < 0 {
		return fmt.Errorf("config error: JOB_RETENTION_DAYS must be non-negative")
	}
	if c.SeenTTLHours < 1 {
		return fmt.Errorf("config error: SEEN_TTL_HOURS must be at least 1")
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return n, nil
}
