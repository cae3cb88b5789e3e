package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, time.Hour, cfg.Trending.Interval)
	assert.Equal(t, "none", cfg.AI.Provider)
	assert.True(t, cfg.Import.EnrichEnabled)
	assert.Equal(t, 50, cfg.Import.MaxPerSource)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Empty(t, cfg.RequiredServices)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/findmyai")
	t.Setenv("TRENDING_INTERVAL", "15m")
	t.Setenv("AI_PROVIDER", "OpenAI")
	t.Setenv("AI_API_KEY", "sk-test")
	t.Setenv("IMPORT_ENRICH", "false")
	t.Setenv("CORS_ORIGINS", "https://findmyai.app, https://admin.findmyai.app")
	t.Setenv("REQUIRED_SERVICES", "Redis,elasticsearch")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@db:5432/findmyai", cfg.Database.URL)
	assert.Equal(t, 15*time.Minute, cfg.Trending.Interval)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "sk-test", cfg.AI.APIKey)
	assert.False(t, cfg.Import.EnrichEnabled)
	assert.Equal(t, []string{"https://findmyai.app", "https://admin.findmyai.app"}, cfg.Server.CORSOrigins)
	assert.Equal(t, []string{"redis", "elasticsearch"}, cfg.RequiredServices)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("DATABASE_DRIVER", "mongo")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("provider without key", func(t *testing.T) {
		t.Setenv("DATABASE_DRIVER", "sqlite")
		t.Setenv("AI_PROVIDER", "gemini")
		_, err := Load()
		assert.ErrorContains(t, err, "ai.api_key")
	})

	t.Run("unknown required service", func(t *testing.T) {
		t.Setenv("DATABASE_DRIVER", "sqlite")
		t.Setenv("REQUIRED_SERVICES", "memcached")
		_, err := Load()
		assert.ErrorContains(t, err, "memcached")
	})

	t.Run("production without secret", func(t *testing.T) {
		t.Setenv("DATABASE_DRIVER", "sqlite")
		t.Setenv("ENVIRONMENT", "production")
		_, err := Load()
		assert.ErrorContains(t, err, "JWT_SECRET")
	})
}
