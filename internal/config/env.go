// Package config reads jsdares settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the environment-configurable settings. Command-line flags
// override them.
type Config struct {
	SurfaceSize int           `env:"JSDARES_SURFACE_SIZE" envDefault:"540"`
	QuietPeriod time.Duration `env:"JSDARES_QUIET_PERIOD" envDefault:"24ms"`
	DBPath      string        `env:"JSDARES_DB" envDefault:"jsdares.db"`
	LogLevel    string        `env:"JSDARES_LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.SurfaceSize <= 0 {
		return Config{}, fmt.Errorf("JSDARES_SURFACE_SIZE must be positive, got %d", cfg.SurfaceSize)
	}
	if cfg.QuietPeriod <= 0 {
		return Config{}, fmt.Errorf("JSDARES_QUIET_PERIOD must be positive, got %s", cfg.QuietPeriod)
	}
	if _, err := cfg.Level(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Level returns the slog level named by LogLevel.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("JSDARES_LOG_LEVEL: %w", err)
	}
	return lvl, nil
}
