package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Run from an empty dir so a developer's config.toml or .env is not picked up
	t.Chdir(t.TempDir())

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, "erp-client", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
		assert.Equal(t, TokenStoreFile, cfg.Auth.TokenStore)
		assert.NotEmpty(t, cfg.Auth.TokenFile)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "stderr", cfg.Log.Output)
		assert.Equal(t, time.Hour, cfg.Mock.TokenExpiration)
		assert.Equal(t, 5, cfg.Mock.SeedCount)
	})

	t.Run("loads values from environment variables with ERPCLIENT prefix", func(t *testing.T) {
		t.Setenv("ERPCLIENT_API_BASE_URL", "https://erp.example.com")
		t.Setenv("ERPCLIENT_AUTH_TOKEN_STORE", "memory")
		t.Setenv("ERPCLIENT_LOG_LEVEL", "debug")
		t.Setenv("ERPCLIENT_MOCK_SEED_COUNT", "12")

		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, "https://erp.example.com", cfg.API.BaseURL)
		assert.Equal(t, TokenStoreMemory, cfg.Auth.TokenStore)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, 12, cfg.Mock.SeedCount)
	})

	t.Run("reads an explicit toml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "client.toml")
		content := `
[api]
base_url = "http://erp.internal:9000"

[auth]
token_store = "redis"
redis_key = "tenant-a:token"

[metrics]
enabled = true
addr = ":9999"
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "http://erp.internal:9000", cfg.API.BaseURL)
		assert.Equal(t, TokenStoreRedis, cfg.Auth.TokenStore)
		assert.Equal(t, "tenant-a:token", cfg.Auth.RedisKey)
		assert.True(t, cfg.Metrics.Enabled)
		assert.Equal(t, ":9999", cfg.Metrics.Addr)
	})

	t.Run("fails when an explicit file is missing", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
		assert.Error(t, err)
	})

	t.Run("rejects unknown token store", func(t *testing.T) {
		t.Setenv("ERPCLIENT_AUTH_TOKEN_STORE", "cookie")

		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "auth.token_store")
	})

	t.Run("requires https in production", func(t *testing.T) {
		t.Setenv("ERPCLIENT_APP_ENV", "production")

		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "https")
	})
}
