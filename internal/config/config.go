// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file/env on top.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ModelsFile points at the roster CSV listing the competing models.
	ModelsFile string `koanf:"models_file"`

	// JokesFile points at the JSON joke catalog (model -> category -> jokes).
	JokesFile string `koanf:"jokes_file"`

	// StateFile is the durable rating state; its lock file lives next to it.
	StateFile string `koanf:"state_file"`

	// KFactor is the maximum Elo swing per battle.
	KFactor float64 `koanf:"k_factor"`

	// BattleTTLSeconds bounds how long a drawn battle stays votable.
	BattleTTLSeconds int `koanf:"battle_ttl_seconds"`

	// LockTimeoutMS bounds waiting for the state file lock.
	LockTimeoutMS int `koanf:"lock_timeout_ms"`

	// SweepIntervalSeconds configures the abandoned-session sweeper.
	SweepIntervalSeconds int `koanf:"sweep_interval_seconds"`

	// Explanation overrides the leaderboard blurb shown to visitors.
	Explanation string `koanf:"explanation"`
}

// New creates a Config with the built-in defaults.
func New() *Config {
	c := &Config{
		LogLevel:             "info",
		Addr:                 ":8080",
		ModelsFile:           "models.csv",
		JokesFile:            "jokes.json",
		StateFile:            "elo_state.json",
		KFactor:              32,
		BattleTTLSeconds:     300,
		LockTimeoutMS:        3000,
		SweepIntervalSeconds: 60,
	}
	return c
}
