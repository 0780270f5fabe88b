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
//  2. file (YAML) if DRAFTLAB_CONFIG is set
//  3. env (prefix DRAFTLAB_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("DRAFTLAB_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: DRAFTLAB_ADDR, DRAFTLAB_DATA_PATH, ...
	// Map env keys like DRAFTLAB_CACHE_CAPACITY -> cache_capacity, matching
	// the koanf tags on the struct.
	envProvider := env.Provider("DRAFTLAB_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "draftlab_")
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

// validate rejects configurations the service cannot run with.
func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.DataPath == "" {
		return fmt.Errorf("%w: data_path must not be empty", ErrInvalidConfig)
	}
	if c.CacheCapacity < 0 {
		return fmt.Errorf("%w: cache_capacity must be >= 0, got %d", ErrInvalidConfig, c.CacheCapacity)
	}
	if c.DispatchThresholdMS < 0 {
		return fmt.Errorf("%w: dispatch_threshold_ms must be >= 0, got %d", ErrInvalidConfig, c.DispatchThresholdMS)
	}
	if c.DispatchMargin < 0 || c.DispatchMargin >= 1 {
		return fmt.Errorf("%w: dispatch_margin must be in [0, 1), got %v", ErrInvalidConfig, c.DispatchMargin)
	}
	return nil
}
