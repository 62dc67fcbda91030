package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LISTEN_ADDR", "DATABASE_URL", "REDIS_URL", "GEMINI_API_KEY",
		"INGEST_SHARED_SECRET", "WEBHOOK_BEARER_TOKEN", "SWEEP_SCHEDULE",
		"OPERATOR_USERNAME", "OPERATOR_PASSWORD_HASH",
		"JOB_RETENTION_DAYS", "SEEN_TTL_HOURS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/jobfunnel")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "@every 1h", cfg.SweepSchedule)
	assert.Equal(t, "admin", cfg.OperatorUsername)
	assert.Equal(t, 0, cfg.RetentionDays)
	assert.Equal(t, 24, cfg.SeenTTLHours)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.GeminiAPIKey)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/jobfunnel")
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("SWEEP_SCHEDULE", "@every 10m")
	t.Setenv("JOB_RETENTION_DAYS", "30")
	t.Setenv("SEEN_TTL_HOURS", "48")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "@every 10m", cfg.SweepSchedule)
	assert.Equal(t, 30, cfg.RetentionDays)
	assert.Equal(t, 48, cfg.SeenTTLHours)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric retention", "JOB_RETENTION_DAYS", "forever"},
		{"negative retention", "JOB_RETENTION_DAYS", "-1"},
		{"zero seen ttl", "SEEN_TTL_HOURS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DATABASE_URL", "postgres://localhost:5432/jobfunnel")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestWebhookToken(t *testing.T) {
	cfg := &Config{IngestSharedSecret: "shared"}
	assert.Equal(t, "shared", cfg.WebhookToken())

	cfg.WebhookBearerToken = "bearer"
	assert.Equal(t, "bearer", cfg.WebhookToken())
}
