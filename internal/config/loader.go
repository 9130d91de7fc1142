package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if TRANSITS_CONFIG is set
//  3. env (prefix TRANSITS_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("TRANSITS_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: TRANSITS_ADDR, TRANSITS_QUEUE_SIZE, ...
	// Keys map to the koanf tags on the struct, underscores preserved.
	envProvider := env.Provider("TRANSITS_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "transits_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.MinuteTolArcmin <= 0 {
		return fmt.Errorf("%w: minute_tol_arcmin must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(strings.TrimSpace(c.DefaultSect)) {
	case "auto", "diurnal", "nocturnal":
	default:
		return fmt.Errorf("%w: default_sect must be auto, diurnal, or nocturnal", ErrInvalidConfig)
	}
	for body, orb := range c.ApplyingOrbs {
		if orb <= 0 {
			return fmt.Errorf("%w: applying orb for %s must be positive", ErrInvalidConfig, body)
		}
	}
	for body, orb := range c.SeparatingOrbs {
		if orb <= 0 {
			return fmt.Errorf("%w: separating orb for %s must be positive", ErrInvalidConfig, body)
		}
	}
	return nil
}
