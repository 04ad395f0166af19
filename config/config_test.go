package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"DATABASE_URL", "JWT_SECRET", "API_URL", "API_KEY", "HTTP_ADDR", "LOG_LEVEL", "APP_ENV"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.Development())
	assert.ErrorIs(t, cfg.RequireDatabase(), ErrMissing)
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/db")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("API_URL", "https://example.supabase.co/")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@localhost:5432/db", cfg.DatabaseURL)
	assert.Equal(t, "https://example.supabase.co", cfg.APIURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.Development())
	assert.NoError(t, cfg.RequireServer())
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "maint.env")
	require.NoError(t, os.WriteFile(path, []byte("DATABASE_URL=postgres://file/db\nHTTP_ADDR=:9000\n"), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://file/db", cfg.DatabaseURL)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.ErrorIs(t, cfg.RequireServer(), ErrMissing)

	_, err = LoadFile(filepath.Join(t.TempDir(), "nope.env"))
	assert.Error(t, err)
}
