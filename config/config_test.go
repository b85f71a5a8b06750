package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_URL", "postgres://lore@localhost/lore")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CACHE_TTL", "")
	t.Setenv("CACHE_LOCAL_TTL", "")
	t.Setenv("ASSET_BUCKET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.CacheLocalTTL)
	assert.Equal(t, time.Hour, cfg.AssetURLTTL)
	assert.False(t, cfg.SigningEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_URL", "postgres://lore@localhost/lore")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CACHE_TTL", "5m")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.Production())
}

func TestLoadRejects(t *testing.T) {
	t.Setenv("DB_URL", "")
	t.Setenv("JWT_SECRET", "s3cret")
	_, err := Load()
	assert.ErrorContains(t, err, "DB_URL")

	t.Setenv("DB_URL", "postgres://x")
	t.Setenv("CACHE_TTL", "soon")
	_, err = Load()
	assert.ErrorContains(t, err, "CACHE_TTL")
}
