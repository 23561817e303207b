// Package config loads the runtime knobs of stores and test stores from the
// environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config controls buffering, sharding and test timeouts.
type Config struct {
	ReceiveTimeout    time.Duration `env:"EFFECTIVE_FLOW_RECEIVE_TIMEOUT"     envDefault:"1s"`
	JournalBufferSize int           `env:"EFFECTIVE_FLOW_JOURNAL_BUFFER_SIZE" envDefault:"64"`
	LogBufferSize     int           `env:"EFFECTIVE_FLOW_LOG_BUFFER_SIZE"     envDefault:"16"`
	RegistryShards    int           `env:"EFFECTIVE_FLOW_REGISTRY_SHARDS"     envDefault:"8"`
}

func Default() Config {
	return Config{
		ReceiveTimeout:    time.Second,
		JournalBufferSize: 64,
		LogBufferSize:     16,
		RegistryShards:    8,
	}
}

// Parse reads the environment on top of the defaults.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg.Normalize(), nil
}

// FromEnv is Parse falling back to Default when the environment is malformed.
func FromEnv() Config {
	cfg, err := Parse()
	if err != nil {
		return Default()
	}
	return cfg
}

// Normalize replaces out-of-range values. A zero journal buffer is kept and
// disables the journal.
func (c Config) Normalize() Config {
	def := Default()
	if c.ReceiveTimeout <= 0 {
		c.ReceiveTimeout = def.ReceiveTimeout
	}
	if c.JournalBufferSize < 0 {
		c.JournalBufferSize = 0
	}
	if c.LogBufferSize <= 0 {
		c.LogBufferSize = 1
	}
	if c.RegistryShards <= 0 {
		c.RegistryShards = 1
	}
	return c
}
