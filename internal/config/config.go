package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Secondary display modes.
const (
	SecondaryBalance = "balance"
	SecondaryWeekly  = "weekly"
)

// DebugEnvVar turns on diagnostic logging when set to any value.
const DebugEnvVar = "YESCODE_DEBUG"

// Config represents the quota segment configuration.
type Config struct {
	Enabled     bool              `yaml:"enabled"`
	Debug       bool              `yaml:"debug"`
	LogLevel    string            `yaml:"log_level"`
	Display     DisplayConfig     `yaml:"display"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Transport   TransportConfig   `yaml:"transport"`
	Watch       WatchConfig       `yaml:"watch"`
}

// DisplayConfig selects how the secondary string is rendered.
type DisplayConfig struct {
	Secondary string `yaml:"secondary"`
}

// CredentialsConfig points at the per-user files consulted after the environment.
type CredentialsConfig struct {
	SettingsPath string `yaml:"settings_path"`
	KeyFile      string `yaml:"key_file"`
}

// TransportConfig contains outbound HTTP configuration.
type TransportConfig struct {
	UTLS bool `yaml:"utls"`
}

// WatchConfig contains configuration for the long-running watch mode.
type WatchConfig struct {
	Interval time.Duration `yaml:"interval"`
	Listen   string        `yaml:"listen"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	home := homeDir()
	return &Config{
		Enabled:  true,
		LogLevel: "error",
		Display: DisplayConfig{
			Secondary: SecondaryBalance,
		},
		Credentials: CredentialsConfig{
			SettingsPath: filepath.Join(home, ".claude", "settings.json"),
			KeyFile:      filepath.Join(home, ".claude", "api_key"),
		},
		Watch: WatchConfig{
			Interval: 60 * time.Second,
		},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	return filepath.Join(homeDir(), ".claude", "ccline", "quota.yaml")
}

// DiagnosticsEnabled reports whether diagnostics were requested by config or environment.
func (c *Config) DiagnosticsEnabled() bool {
	if c.Debug {
		return true
	}
	_, ok := os.LookupEnv(DebugEnvVar)
	return ok
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Display.Validate(); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	if err := c.Watch.Validate(); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error")
	}
	return nil
}

// Validate validates the display configuration.
func (d *DisplayConfig) Validate() error {
	switch d.Secondary {
	case SecondaryBalance, SecondaryWeekly:
		return nil
	default:
		return fmt.Errorf("secondary must be %q or %q, got %q", SecondaryBalance, SecondaryWeekly, d.Secondary)
	}
}

// Validate validates the watch configuration.
func (w *WatchConfig) Validate() error {
	if w.Interval < time.Second {
		return fmt.Errorf("interval must be at least 1s")
	}
	return nil
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}
