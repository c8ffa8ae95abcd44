package cli

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvConfig holds defaults read from the environment. Flags given on the
// command line override them.
type EnvConfig struct {
	Database    string  `env:"ACHEM_DB"`
	Seed        *uint64 `env:"ACHEM_SEED"`
	Workers     int     `env:"ACHEM_WORKERS"`
	Temperature float64 `env:"ACHEM_TEMPERATURE"`
	Format      string  `env:"ACHEM_FORMAT"`
}

// ParseEnv loads EnvConfig from environment variables.
func ParseEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
