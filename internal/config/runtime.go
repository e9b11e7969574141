package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// RuntimeConfig holds process-level settings taken from the environment.
type RuntimeConfig struct {
	ConfigPath string `env:"LETSCORE_CONFIG" envDefault:"config/let.defaults.json"`
	DBPath     string `env:"LETSCORE_DB"`
	Workers    int    `env:"LETSCORE_WORKERS" envDefault:"0"` // 0 means runtime.NumCPU()
}

// LoadRuntimeConfig parses RuntimeConfig from the process environment.
func LoadRuntimeConfig() (RuntimeConfig, error) {
	var c RuntimeConfig
	if err := env.Parse(&c); err != nil {
		return RuntimeConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return c, c.Validate()
}

// ParseRuntimeConfig parses RuntimeConfig from the given variables instead
// of the process environment.
func ParseRuntimeConfig(environ map[string]string) (RuntimeConfig, error) {
	var c RuntimeConfig
	if err := env.ParseWithOptions(&c, env.Options{Environment: environ}); err != nil {
		return RuntimeConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return c, c.Validate()
}

// Validate checks the runtime settings.
func (c RuntimeConfig) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("LETSCORE_WORKERS must be non-negative, got %d", c.Workers)
	}
	return nil
}
