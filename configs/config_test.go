package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("JWT_SECRET", "topSecret51")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "topSecret51", cfg.JWTSecret)
	assert.Equal(t, 3600, cfg.JWTExpiresIn)
	assert.Equal(t, time.Hour, cfg.TokenTTL())
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.False(t, cfg.RedisEnabled)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("JWT_SECRET", "topSecret51")
	t.Setenv("JWT_EXPIRES_IN", "60")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("REDIS_CACHE_TTL", "5m")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.TokenTTL())
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 5*time.Minute, cfg.RedisCacheTTL)
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("JWT_SECRET", "topSecret51")
	t.Setenv("DB_DRIVER", "mysql")

	_, err := LoadConfig()
	assert.Error(t, err)
}
