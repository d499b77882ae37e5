// Package config loads process configuration from the environment and the
// organization policy from a CUE file.
package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// Env is the process configuration read from environment variables. Command
// line flags override it.
type Env struct {
	DBPath     string     `env:"RKSLEDGER_DB" envDefault:"rksledger.db"`
	PolicyPath string     `env:"RKSLEDGER_POLICY"`
	LogLevel   slog.Level `env:"RKSLEDGER_LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadEnv reads Env from the process environment.
func LoadEnv() (Env, error) {
	var e Env
	if err := ParseEnv(&e); err != nil {
		return Env{}, err
	}
	return e, nil
}
