package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("POSTGRES_CONN_STR", "postgres://localhost/onyx")
	t.Setenv("JWT_SECRET", "secret")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "onyxdrift", cfg.MongoDatabase)
	assert.Equal(t, 24*time.Hour, cfg.StoryTTL)
	assert.Equal(t, 5, cfg.DBConnectAttempts)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("POSTGRES_CONN_STR", "postgres://db/onyx")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORY_TTL", "12h")
	t.Setenv("CORS_ORIGINS", "https://onyx-drift.com, https://www.onyx-drift.com,")
	t.Setenv("DB_CONNECT_ATTEMPTS", "3")
	t.Setenv("RATE_LIMIT_PER_SECOND", "2.5")

	cfg := Load()

	assert.Equal(t, 12*time.Hour, cfg.StoryTTL)
	assert.Equal(t, []string{"https://onyx-drift.com", "https://www.onyx-drift.com"}, cfg.CORSOrigins)
	assert.Equal(t, 3, cfg.DBConnectAttempts)
	assert.InDelta(t, 2.5, cfg.RateLimitPerSecond, 0.0001)
}

func TestValidateRequiresDatabaseURL(t *testing.T) {
	t.Setenv("MONGO_URI", "")
	t.Setenv("POSTGRES_CONN_STR", "postgres://db/onyx")
	t.Setenv("JWT_SECRET", "secret")

	err := Load().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MongoURI")
}

func TestMalformedNumbersFallBack(t *testing.T) {
	t.Setenv("DB_CONNECT_DELAY", "soon")
	t.Setenv("RATE_LIMIT_BURST", "many")

	cfg := Load()
	assert.Equal(t, 2*time.Second, cfg.DBConnectDelay)
	assert.Equal(t, 30, cfg.RateLimitBurst)
}

func TestLoadReportsEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	assert.False(t, Load().EnvFileLoaded)

	// unset for the duration of the test; cleanup restores the original
	t.Setenv("GEMINI_MODEL", "")
	require.NoError(t, os.Unsetenv("GEMINI_MODEL"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GEMINI_MODEL=gemini-test\n"), 0o600))

	cfg := Load()
	assert.True(t, cfg.EnvFileLoaded)
	assert.Equal(t, "gemini-test", cfg.GeminiModel)
}
