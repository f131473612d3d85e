// Package config loads the service configuration from environment
// variables.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// insecureDevSecret signs tokens when JWT_SECRET is unset. Good enough for
// local development, useless anywhere else.
const insecureDevSecret = "dev-secret-change-me"

// Config holds the runtime configuration.
type Config struct {
	Port   int    `env:"PORT" envDefault:"8080"`
	DBPath string `env:"DB_PATH" envDefault:"data/avatars.db"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTExp    time.Duration `env:"JWT_EXP" envDefault:"1h"`

	// Bcrypt hash of the API key required to mint tokens. Empty disables
	// the check.
	APIKeyHash string `env:"AUTH_API_KEY_HASH"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"pretty"`
}

// Load parses the environment into a Config. A missing JWT secret falls
// back to an insecure development value and logs a warning.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET not set, using insecure development secret")
		cfg.JWTSecret = insecureDevSecret
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
