package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("DATABASE_URL", "http://localhost:5984/")
	t.Setenv("DB_USERNAME", "admin")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET", "jwt-secret")
}

func TestLoad_FromEnvWithDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvLocal, cfg.Env)
	assert.Equal(t, ":8080", cfg.HTTPServer.Address)
	assert.Equal(t, 10*time.Second, cfg.HTTPServer.Timeout)
	assert.Equal(t, "http://localhost:5984/", cfg.URL)
	assert.Equal(t, "users", cfg.AuthDB)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.False(t, cfg.CookieInsecure)
	assert.False(t, cfg.CheckIdentity)
	assert.Zero(t, cfg.RPS)
	assert.Empty(t, cfg.Redis.Address)
	assert.Equal(t, 5, cfg.MaxAttempts)
}

func TestLoad_MissingSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_UnknownEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENV", "staging")

	_, err := Load()
	assert.ErrorContains(t, err, "unknown env")
}

func TestLoad_FromFile(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TOKEN_TTL", "1h")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
env: dev
http_server:
  address: ":9090"
couchdb:
  auth_db: identities
auth:
  token_ttl: 24h
  cookie_insecure: true
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDev, cfg.Env)
	assert.Equal(t, ":9090", cfg.HTTPServer.Address)
	assert.Equal(t, "identities", cfg.AuthDB)
	// переменные окружения имеют приоритет над файлом
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.CookieInsecure)
}

func TestLoad_FileNotFound(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.ErrorIs(t, err, ErrConfigFileNotFound)
}

func TestConfig_StringMasksSecrets(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	s := cfg.String()
	assert.NotContains(t, s, "jwt-secret")
	assert.NotContains(t, s, "secret\n")
	assert.Contains(t, s, "********")
}
