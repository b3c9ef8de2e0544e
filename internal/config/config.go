// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for castaway.
//
// Configuration sources, in order of precedence:
//   - Environment variables (GEMINI_API_KEY)
//   - ~/.castaway/config.toml
//   - Built-in defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete castaway configuration.
type Config struct {
	// Gemini holds the hosted model settings.
	Gemini GeminiConfig `toml:"gemini"`

	// DataDir is where session state lives (empty = ~/.castaway).
	DataDir string `toml:"data_dir"`

	// Notifications enables terminal notifications for messages that arrive
	// while the terminal is unfocused.
	Notifications bool `toml:"notifications"`

	// Proactive tunes the idle-chat scheduler.
	Proactive ProactiveConfig `toml:"proactive"`
}

// GeminiConfig contains the Gemini API settings.
type GeminiConfig struct {
	// APIKey is the Gemini API key. Env var GEMINI_API_KEY takes precedence.
	APIKey string `toml:"api_key"`
	// Model is the model identifier used for every request.
	Model string `toml:"model"`
	// BaseURL overrides the API endpoint, mainly for testing.
	BaseURL string `toml:"base_url"`
}

// ProactiveConfig tunes when the cast speaks up unprompted.
type ProactiveConfig struct {
	// Enabled turns the idle scheduler on.
	Enabled bool `toml:"enabled"`
	// MaxDelaySecs caps the idle delay before a proactive message (0 = default).
	MaxDelaySecs int `toml:"max_delay_secs"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Gemini: GeminiConfig{
			Model: "gemini-2.5-flash",
		},
		Notifications: true,
		Proactive: ProactiveConfig{
			Enabled: true,
		},
	}
}

// =============================================================================
// PATH HELPERS
// =============================================================================

// Dir returns the castaway configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".castaway"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the config file, applies env overrides, and validates. A missing
// file is not an error: defaults plus env overrides are returned.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath is Load against an explicit file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, statErr := os.Stat(path); statErr == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the default TOML file with 0600
// permissions; the file holds the API key.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# castaway configuration file")
	fmt.Fprintln(file, "")

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// OVERRIDES, DEFAULTS, VALIDATION
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - GEMINI_API_KEY: overrides gemini.api_key
//   - CASTAWAY_MODEL: overrides gemini.model
//   - CASTAWAY_DATA_DIR: overrides data_dir
func (c *Config) ApplyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}
	if model := os.Getenv("CASTAWAY_MODEL"); model != "" {
		c.Gemini.Model = model
	}
	if dir := os.Getenv("CASTAWAY_DATA_DIR"); dir != "" {
		c.DataDir = dir
	}
}

// SetDefaults fills in any missing values with defaults.
func (c *Config) SetDefaults() {
	defaults := Default()
	if c.Gemini.Model == "" {
		c.Gemini.Model = defaults.Gemini.Model
	}
	if c.DataDir == "" {
		if dir, err := Dir(); err == nil {
			c.DataDir = dir
		}
	}
}

// Validate checks the configuration for values that cannot work. A missing
// API key is deliberately NOT an error here: the UI degrades to a visible
// notice so the user can still read old conversations.
func (c *Config) Validate() error {
	if c.Gemini.Model == "" {
		return fmt.Errorf("gemini.model must not be empty")
	}
	if strings.ContainsAny(c.Gemini.Model, " \t\n") {
		return fmt.Errorf("gemini.model %q contains whitespace", c.Gemini.Model)
	}
	if c.Proactive.MaxDelaySecs < 0 {
		return fmt.Errorf("proactive.max_delay_secs must be non-negative, got %d", c.Proactive.MaxDelaySecs)
	}
	return nil
}

// MaxProactiveDelay returns the configured idle delay cap, or zero when the
// built-in default should apply.
func (c *Config) MaxProactiveDelay() time.Duration {
	return time.Duration(c.Proactive.MaxDelaySecs) * time.Second
}
