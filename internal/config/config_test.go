package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("missing database url", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("JWT_SECRET", "secret")

		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/campus")
		t.Setenv("JWT_SECRET", "  ")

		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/campus")
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("PORT", "")
		t.Setenv("TOKEN_TTL", "")
		t.Setenv("SESSION_COOKIE", "")
		t.Setenv("AWS_BUCKET_NAME", "")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
		assert.Equal(t, "token", cfg.SessionCookie)
		assert.Equal(t, 20, cfg.AuthRatePerMinute)
		assert.False(t, cfg.MediaEnabled())
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/campus")
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("TOKEN_TTL", "90m")
		t.Setenv("COOKIE_SECURE", "true")
		t.Setenv("AWS_BUCKET_NAME", "campus-media")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
		assert.True(t, cfg.CookieSecure)
		assert.True(t, cfg.MediaEnabled())
	})
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("NUM", "notint")
	assert.Equal(t, 7, GetEnvInt("NUM", 7))

	t.Setenv("FLAG", "false")
	assert.False(t, GetEnvBool("FLAG", true))

	t.Setenv("TTL", "-5m")
	assert.Equal(t, time.Hour, GetEnvDuration("TTL", time.Hour))
}
