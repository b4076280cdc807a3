// Package config loads the Splitledger configuration from a TOML file
// with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full daemon configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type AuthConfig struct {
	// JWTSecret signs session tokens. Must be overridden in production
	// via SPLITLEDGER_JWT_SECRET.
	JWTSecret string `toml:"jwt_secret"`

	// TokenTTL is the session lifetime, e.g. "24h".
	TokenTTL string `toml:"token_ttl"`
}

type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server:   ServerConfig{Host: "127.0.0.1", Port: 8080},
		Database: DatabaseConfig{Path: "./data/splitledger.db"},
		Auth:     AuthConfig{JWTSecret: "dev-secret-change-me", TokenTTL: "24h"},
		Metrics:  MetricsConfig{Enabled: true},
	}
}

// Load reads the config file at path, then applies environment
// overrides. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv lets SPLITLEDGER_* environment variables override the file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("SPLITLEDGER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SPLITLEDGER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SPLITLEDGER_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("SPLITLEDGER_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("SPLITLEDGER_TOKEN_TTL"); v != "" {
		cfg.Auth.TokenTTL = v
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// TokenDuration parses Auth.TokenTTL, falling back to 24h on garbage.
func (c *Config) TokenDuration() time.Duration {
	d, err := time.ParseDuration(c.Auth.TokenTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}
