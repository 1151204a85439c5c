package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	assert.Equal(t, "book-agent", cfg.Agent.ID)
	assert.Equal(t, "Book Excerpt Agent", cfg.Agent.Name)
	assert.Equal(t, "https://gutendex.com", cfg.Catalog.BaseURL)
	assert.Equal(t, 3, cfg.Catalog.MaxRetries)
	assert.Equal(t, 30, cfg.RateLimit.RequestsPerMinute)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, time.Minute, cfg.Tasks.SweepInterval)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 127.0.0.1
  port: 9090
agent:
  id: my-agent
catalog:
  base_url: https://gutendex.internal
  max_retries: 5
rate_limit:
  enabled: true
  requests_per_minute: 10
tasks:
  ttl: 1h
  sweep_interval: 5m
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Address())
	assert.Equal(t, "my-agent", cfg.Agent.ID)
	assert.Equal(t, "https://gutendex.internal", cfg.Catalog.BaseURL)
	assert.Equal(t, 5, cfg.Catalog.MaxRetries)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 10, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, time.Hour, cfg.Tasks.TTL)
	assert.Equal(t, 5*time.Minute, cfg.Tasks.SweepInterval)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not: a: mapping")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("BOOKAGENT_TEST_HOST", "10.1.2.3")
	os.Unsetenv("BOOKAGENT_TEST_UNSET")

	path := writeConfig(t, `
server:
  host: ${BOOKAGENT_TEST_HOST}
  base_url: ${BOOKAGENT_TEST_UNSET:-http://fallback.local}
agent:
  id: agent-$BOOKAGENT_TEST_HOST
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "10.1.2.3", cfg.Server.Host)
	assert.Equal(t, "http://fallback.local", cfg.Server.BaseURL)
	assert.Equal(t, "agent-10.1.2.3", cfg.Agent.ID)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantSetting string
	}{
		{"port too low", func(c *Config) { c.Server.Port = -1 }, "server.port"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"retries negative", func(c *Config) { c.Catalog.MaxRetries = -1 }, "catalog.max_retries"},
		{"rate limit enabled without budget", func(c *Config) {
			c.RateLimit.Enabled = true
			c.RateLimit.RequestsPerMinute = -1
		}, "rate_limit.requests_per_minute"},
		{"negative ttl", func(c *Config) { c.Tasks.TTL = -time.Minute }, "tasks.ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.SetDefaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var envErr *EnvironmentError
			require.ErrorAs(t, err, &envErr)
			assert.Equal(t, tt.wantSetting, envErr.Setting)
		})
	}
}
