// Package config loads the TOML configuration that tells a ztree process
// where its snapshot and log directories live and how its session-upgrade
// and quota-enforcement policy should behave.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	SnapshotDir string `toml:"snapshot_dir"`
	LogDir      string `toml:"log_dir"`

	TickTimeMillis              int32 `toml:"tick_time_millis"`
	DefaultSessionTimeoutMillis int32 `toml:"default_session_timeout_millis"`

	// QuotaWarnOnly, when true, means exceeding a quota only logs a
	// warning rather than rejecting the write (the tree never rejects a
	// write for quota reasons today, so this is a forward-compatible
	// knob rather than a live switch).
	QuotaWarnOnly bool `toml:"quota_warn_only"`

	LocalSessionsEnabled          bool `toml:"local_sessions_enabled"`
	LocalSessionUpgradingEnabled  bool `toml:"local_session_upgrading_enabled"`
}

var defaultConfig = Config{
	SnapshotDir:                  "./data/snapshots",
	LogDir:                       "./data/log",
	TickTimeMillis:               2000,
	DefaultSessionTimeoutMillis:  10000,
	QuotaWarnOnly:                true,
	LocalSessionsEnabled:         false,
	LocalSessionUpgradingEnabled: false,
}

// Default returns a fresh copy of the built-in configuration.
func Default() *Config {
	c := defaultConfig
	return &c
}

// Load reads and validates a TOML config file, starting from Default()
// so any field the file omits keeps its default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: error reading %s: %w", path, err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: error parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SnapshotDir == "" {
		return fmt.Errorf("config: snapshot_dir must be set")
	}
	if c.LogDir == "" {
		return fmt.Errorf("config: log_dir must be set")
	}
	if c.TickTimeMillis <= 0 {
		return fmt.Errorf("config: tick_time_millis must be positive")
	}
	if c.DefaultSessionTimeoutMillis <= 0 {
		return fmt.Errorf("config: default_session_timeout_millis must be positive")
	}
	return nil
}

// WriteDefault writes the built-in configuration to path, for a first-run
// "here's what you can tune" file.
func WriteDefault(path string) error {
	data, err := toml.Marshal(defaultConfig)
	if err != nil {
		return fmt.Errorf("config: error marshalling default config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
