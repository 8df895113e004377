package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable NewFromEnv reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"EASYDISH_DATA_DIR", "EASYDISH_STORAGE_BACKEND", "EASYDISH_STORAGE_KEY",
		"DATABASE_URL", "AUTH_JWT_SECRET", "CATALOG_MATCH_FUNCTION",
		"AI_PROVIDER", "GEMINI_API_KEY", "GEMINI_MODEL", "GROQ_API_KEY", "GROQ_MODEL",
		"LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		clearEnv(t)

		cfg, err := NewFromEnv()
		require.NoError(t, err)

		assert.Equal(t, "./data", cfg.DataDir)
		assert.Equal(t, BackendFile, cfg.StorageBackend)
		assert.Equal(t, "easydish-storage", cfg.StorageKey)
		assert.Equal(t, ProviderGemini, cfg.AIProvider)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.False(t, cfg.RemoteEnabled())
		assert.Equal(t, filepath.Join("data", "state"), filepath.Clean(cfg.KVPath()))
	})

	t.Run("Success", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("EASYDISH_DATA_DIR", "/var/lib/easydish")
		t.Setenv("EASYDISH_STORAGE_BACKEND", "SQLite")
		t.Setenv("DATABASE_URL", "postgres://localhost/easydish")
		t.Setenv("AUTH_JWT_SECRET", "secret")
		t.Setenv("AI_PROVIDER", "groq")
		t.Setenv("GROQ_API_KEY", "groq_key")
		t.Setenv("LOG_FORMAT", "json")

		cfg, err := NewFromEnv()
		require.NoError(t, err)

		assert.True(t, cfg.RemoteEnabled())
		assert.Equal(t, BackendSQLite, cfg.StorageBackend)
		assert.Equal(t, "/var/lib/easydish/easydish.db", cfg.KVPath())
		assert.Equal(t, "/var/lib/easydish/easydish.db", cfg.MetricsDBPath())
		assert.NoError(t, cfg.RequireAI())
	})

	t.Run("MissingJWTSecret", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DATABASE_URL", "postgres://localhost/easydish")

		_, err := NewFromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "AUTH_JWT_SECRET environment variable not set")
	})

	t.Run("InvalidBackend", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("EASYDISH_STORAGE_BACKEND", "redis")

		_, err := NewFromEnv()
		assert.Error(t, err)
	})

	t.Run("InvalidLogLevel", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LOG_LEVEL", "loud")

		_, err := NewFromEnv()
		assert.Error(t, err)
	})
}

func TestRequireAI(t *testing.T) {
	cfg := &Config{AIProvider: ProviderGemini}
	err := cfg.RequireAI()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")

	cfg.GeminiAPIKey = "k"
	assert.NoError(t, cfg.RequireAI())

	cfg.AIProvider = ProviderGroq
	assert.ErrorContains(t, cfg.RequireAI(), "GROQ_API_KEY")
}
