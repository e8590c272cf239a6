package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_PORT", "APP_WORKERS", "CORS_ORIGINS", "REDIS_ADDR", "POSTGRES_DSN", "SIMULATE_TIMEOUT_SECONDS", "TRACING_ENABLED"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:5000", cfg.App.Addr())
	assert.Equal(t, 4, cfg.App.Workers)
	assert.Equal(t, "*", cfg.App.AllowOrigins())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, 5*time.Second, cfg.Simulation.TimeoutDelay())
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.Postgres.DSN)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "8081")
	t.Setenv("CORS_ORIGINS", "http://a.example, http://b.example,")
	t.Setenv("SIMULATE_TIMEOUT_SECONDS", "0")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "-1")
	t.Setenv("APP_WORKERS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.App.Port)
	assert.Equal(t, "http://a.example,http://b.example", cfg.App.AllowOrigins())
	assert.Zero(t, cfg.Simulation.TimeoutDelay())
	assert.Zero(t, cfg.App.RequestTimeout())
	assert.Equal(t, 4, cfg.App.Workers)
}

func TestLoadRejectsInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "abc")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_DB")
}
