// Package config loads and saves the CLI configuration file.
// Credentials never live here; they belong to the keyring.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultTimeoutSeconds is the per-request timeout applied when the
// config file does not set one.
const DefaultTimeoutSeconds = 30

// Config holds the CLI configuration.
type Config struct {
	// AccountIDKey is the default account used by commands that take
	// an --account flag.
	AccountIDKey string `yaml:"account_id_key"`

	// Sandbox selects the E*TRADE sandbox environment. New setups
	// start in the sandbox until explicitly switched to live trading.
	Sandbox bool `yaml:"sandbox"`

	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// DefaultConfig returns the configuration used before the user has
// run configure.
func DefaultConfig() *Config {
	return &Config{
		Sandbox:        true,
		TimeoutSeconds: DefaultTimeoutSeconds,
	}
}

// Load reads the config file at path. A missing file yields the
// defaults; a malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = DefaultTimeoutSeconds
	}
	return cfg, nil
}

// Save writes the config file, creating parent directories with 0700
// permissions. The file itself is written 0600.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// ConfigPath returns the path of the config file. Uses
// XDG_CONFIG_HOME if set, otherwise ~/.config/etrade.
func ConfigPath() string {
	var configDir string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		configDir = filepath.Join(xdg, "etrade")
	} else {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config", "etrade")
	}
	return filepath.Join(configDir, "config.yaml")
}
