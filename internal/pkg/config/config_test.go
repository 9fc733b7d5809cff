package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "http://localhost:8080", cfg.Backend.URL)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "default", cfg.Storage.Session)
	assert.Empty(t, cfg.Telemetry.Endpoint, "tracing is off by default")
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "valid default config", modify: func(c *Config) {}},
		{name: "missing backend url", modify: func(c *Config) { c.Backend.URL = "" }, wantErr: true},
		{name: "relative backend url", modify: func(c *Config) { c.Backend.URL = "/api" }, wantErr: true},
		{name: "unsupported scheme", modify: func(c *Config) { c.Backend.URL = "ftp://shop" }, wantErr: true},
		{name: "zero timeout", modify: func(c *Config) { c.Backend.Timeout = 0 }, wantErr: true},
		{name: "missing db path", modify: func(c *Config) { c.Storage.Path = "" }, wantErr: true},
		{name: "missing session", modify: func(c *Config) { c.Storage.Session = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	content := `
backend:
  url: https://shop.example.com
  timeout: 10s
auth:
  token_file: /tmp/token
storage:
  session: alice
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("STOREFRONT_SESSION", "bob")
	t.Setenv("STOREFRONT_BACKEND_TIMEOUT", "15")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example.com", cfg.Backend.URL)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout, "env overrides file")
	assert.Equal(t, "/tmp/token", cfg.Auth.TokenFile)
	assert.Equal(t, "bob", cfg.Storage.Session)
	assert.Equal(t, "storefront.db", cfg.Storage.Path, "unset keys keep defaults")
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("backend: [unclosed"), 0o600))
	_, err = Load(bad)
	assert.Error(t, err)

	t.Setenv("STOREFRONT_BACKEND_URL", "not a url")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoadServer(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("OPERATOR_TOKEN", "s3cret")
	t.Setenv("IDEMPOTENCY_TTL", "1h")

	cfg := LoadServer()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "s3cret", cfg.OperatorToken)
	assert.Equal(t, time.Hour, cfg.IdempotencyTTL)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, "dev-backend", cfg.ServiceName)
}

func TestGetEnvDuration_Fallback(t *testing.T) {
	t.Setenv("SOME_DURATION", "soon")
	assert.Equal(t, time.Minute, getEnvDuration("SOME_DURATION", time.Minute))
}
