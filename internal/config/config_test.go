package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pledge-escrow/internal/config/configs"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, uint16(8080), cfg.HTTP.Port)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, configs.DriverMemory, cfg.Store.Driver)
	assert.Equal(t, 3, cfg.Psql.TxRetries)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "escrow:events", cfg.Redis.Stream)
	assert.False(t, cfg.SeedDemo)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("HTTP_SHUTDOWN_TIMEOUT", "1m")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("PSQL_ADDRESS", "postgres://u:p@db:5432/escrow?sslmode=disable")
	t.Setenv("PSQL_TX_RETRIES", "7")
	t.Setenv("REDIS_ADDRESS", "redis:6379")
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("SEED_DEMO", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, uint16(9090), cfg.HTTP.Port)
	assert.Equal(t, time.Minute, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, configs.DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "db:5432", cfg.Psql.Addr.Host)
	assert.Equal(t, 7, cfg.Psql.TxRetries)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, slog.LevelWarn, cfg.Log.SlogLevel())
	assert.Equal(t, "json", cfg.Log.SlogFormat())
	assert.True(t, cfg.SeedDemo)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite")
}
