package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("USER_CACHE_SIZE", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.Equal(t, 500, cfg.UserCacheSize)
	assert.False(t, cfg.DotEnvLoaded)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SESSION_NAME=from_dotenv\n"), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("SESSION_NAME", "")
	require.NoError(t, os.Unsetenv("SESSION_NAME"))

	cfg := Load()

	assert.True(t, cfg.DotEnvLoaded)
	assert.Equal(t, "from_dotenv", cfg.SessionName)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("USER_CACHE_SIZE", "not-a-number")
	t.Setenv("DB_MAX_OPEN_CONNS", "5")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 500, cfg.UserCacheSize)
	assert.Equal(t, 5, cfg.DBMaxOpenConns)
}
