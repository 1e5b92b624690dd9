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
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if ARENA_CONFIG is set
//  3. env (prefix ARENA_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("ARENA_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: ARENA_ADDR, ARENA_STATE_FILE, ...
	// Map env keys like ARENA_STATE_FILE -> state_file (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("ARENA_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "arena_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Basic validation
	switch {
	case cfg.Addr == "":
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.StateFile == "":
		return nil, fmt.Errorf("%w: state_file must not be empty", ErrInvalidConfig)
	case cfg.KFactor <= 0:
		return nil, fmt.Errorf("%w: k_factor must be positive", ErrInvalidConfig)
	case cfg.BattleTTLSeconds <= 0:
		return nil, fmt.Errorf("%w: battle_ttl_seconds must be positive", ErrInvalidConfig)
	case cfg.LockTimeoutMS <= 0:
		return nil, fmt.Errorf("%w: lock_timeout_ms must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
