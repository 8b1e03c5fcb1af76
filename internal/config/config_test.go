package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "config-test-secret-0123"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SPLITPOOL_AUTH_JWT_SECRET", testSecret)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "./data/splitpool.db", cfg.Database.Path)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenDuration)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 100, cfg.Activity.BufferSize)
	assert.Equal(t, 20, cfg.Expenses.DefaultLimit)
	assert.Equal(t, 100, cfg.Expenses.MaxLimit)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "splitpool.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
  shutdown_timeout: 3s
database:
  path: /tmp/pool.db
auth:
  jwt_secret: file-secret-0123456789
log:
  level: debug
expenses:
  default_limit: 10
`), 0o600))
	t.Setenv("SPLITPOOL_DATABASE_PATH", "/var/lib/splitpool.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "/var/lib/splitpool.db", cfg.Database.Path, "env overrides the file")
	assert.Equal(t, "file-secret-0123456789", cfg.Auth.JWTSecret)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 10, cfg.Expenses.DefaultLimit)
	assert.Equal(t, 100, cfg.Expenses.MaxLimit)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("SPLITPOOL_AUTH_JWT_SECRET", testSecret)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:   ServerConfig{Port: 8080, ShutdownTimeout: time.Second},
			Database: DatabaseConfig{Path: "x.db"},
			Auth:     AuthConfig{JWTSecret: testSecret, TokenDuration: time.Hour},
			Log:      LogConfig{Level: "info"},
			Activity: ActivityConfig{BufferSize: 1},
			Expenses: ExpensesConfig{DefaultLimit: 20, MaxLimit: 100},
		}
	}
	base := valid()
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing secret", func(c *Config) { c.Auth.JWTSecret = "" }},
		{"short secret", func(c *Config) { c.Auth.JWTSecret = "short" }},
		{"zero token duration", func(c *Config) { c.Auth.TokenDuration = 0 }},
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"zero shutdown timeout", func(c *Config) { c.Server.ShutdownTimeout = 0 }},
		{"empty database path", func(c *Config) { c.Database.Path = "" }},
		{"zero buffer", func(c *Config) { c.Activity.BufferSize = 0 }},
		{"negative limit", func(c *Config) { c.Expenses.MaxLimit = -1 }},
		{"default above max", func(c *Config) { c.Expenses.DefaultLimit = 200 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
