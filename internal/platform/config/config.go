// Package config assembles the launcher configuration.
//
// Values layer in three steps: struct-tag defaults, SIMSTREAM_* environment
// variables (with optional .env file via godotenv), and finally CLI flags bound
// directly onto the loaded struct. Validate runs after all layers are applied.
package config

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Config holds everything a single launch needs. It is built once at startup
// and never mutated after Validate.
type Config struct {
	Port      int    `env:"SIMSTREAM_PORT" default:"49100"`
	GPU       int    `env:"SIMSTREAM_GPU" default:"0"`
	Tailscale bool   `env:"SIMSTREAM_TAILSCALE" default:"false"`
	Kit       string `env:"SIMSTREAM_KIT" default:"isaac-sim.sh"`
	IPService string `env:"SIMSTREAM_IP_SERVICE" default:"https://ifconfig.me"`
	LogLevel  string `env:"SIMSTREAM_LOG_LEVEL" default:"info"`
	LogFormat string `env:"SIMSTREAM_LOG_FORMAT" default:"text"`
}

// Load builds a Config from defaults and environment variables. Flag binding
// happens in the command layer; callers must run Validate after all overrides
// are applied.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	return &cfg, nil
}

// Validate checks the fully layered configuration.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.GPU < 0 {
		return fmt.Errorf("gpu must be a non-negative device index, got %d", c.GPU)
	}
	if c.Kit == "" {
		return fmt.Errorf("kit executable path must not be empty")
	}
	if c.IPService == "" {
		return fmt.Errorf("IP lookup service URL must not be empty")
	}
	return nil
}
