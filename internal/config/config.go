// Package config loads splitpool's configuration from an optional YAML file
// and SPLITPOOL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. SPLITPOOL_DATABASE_PATH.
const EnvPrefix = "SPLITPOOL"

const minSecretLength = 16

// Config holds all configuration for the server.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	Activity ActivityConfig `mapstructure:"activity"`
	Expenses ExpensesConfig `mapstructure:"expenses"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds the SQLite database location.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// AuthConfig holds JWT settings.
type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenDuration time.Duration `mapstructure:"token_duration"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ActivityConfig sizes the activity worker.
type ActivityConfig struct {
	BufferSize int `mapstructure:"buffer_size"`
}

// ExpensesConfig bounds expense listing.
type ExpensesConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("database.path", "./data/splitpool.db")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_duration", "24h")
	v.SetDefault("log.level", "info")
	v.SetDefault("activity.buffer_size", 100)
	v.SetDefault("expenses.default_limit", 20)
	v.SetDefault("expenses.max_limit", 100)
}

// Load reads configuration from path (skipped when empty) and the environment,
// then validates it.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Auth.JWTSecret == "":
		return errors.New("auth.jwt_secret is required")
	case len(c.Auth.JWTSecret) < minSecretLength:
		return fmt.Errorf("auth.jwt_secret must be at least %d characters", minSecretLength)
	case c.Auth.TokenDuration <= 0:
		return errors.New("auth.token_duration must be positive")
	case c.Server.Port <= 0 || c.Server.Port > 65535:
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	case c.Server.ShutdownTimeout <= 0:
		return errors.New("server.shutdown_timeout must be positive")
	case c.Database.Path == "":
		return errors.New("database.path is required")
	case c.Activity.BufferSize <= 0:
		return errors.New("activity.buffer_size must be positive")
	case c.Expenses.DefaultLimit <= 0 || c.Expenses.MaxLimit <= 0:
		return errors.New("expenses limits must be positive")
	case c.Expenses.DefaultLimit > c.Expenses.MaxLimit:
		return errors.New("expenses.default_limit must not exceed expenses.max_limit")
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
