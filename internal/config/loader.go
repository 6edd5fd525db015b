// Package config provides configuration management for aoss-console.
//
// This file contains config loading functionality including:
// - XDG config path detection
// - TOML file parsing
// - Environment variable overrides
// - Validation
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/chazuruo/aoss-console/internal/errors"
)

// DefaultPath returns ~/.config/aoss/config.toml, whether or not it exists.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "aoss", "config.toml")
	}
	return filepath.Join(homeDir, ".config", "aoss", "config.toml")
}

// DetectConfigPath searches for a config file using XDG standard paths.
// Returns the first config file found, or empty string if none exists.
//
// Search order:
// 1. $XDG_CONFIG_HOME/aoss/config.toml
// 2. ~/.config/aoss/config.toml
func DetectConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		configPath := filepath.Join(xdg, "aoss", "config.toml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}

	configPath := DefaultPath()
	if _, err := os.Stat(configPath); err == nil {
		return configPath
	}

	return ""
}

// Load loads a config from the specified path.
// If the file doesn't exist, returns an error wrapping ErrNotFound.
// After loading, applies environment variable overrides and validates.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &errors.ConfigError{Path: path, Err: errors.ErrNotFound}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &errors.ConfigError{Path: path, Err: fmt.Errorf("read: %w", err)}
	}

	// Start with defaults
	cfg := DefaultConfig()

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, &errors.ConfigError{Path: path, Err: fmt.Errorf("parse: %w", err)}
	}

	applyEnvOverrides(cfg)
	expandPaths(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, &errors.ConfigError{Path: path, Err: fmt.Errorf("%w: %s", errors.ErrInvalid, err)}
	}

	return cfg, nil
}

// LoadWithDefaults attempts to load a config from XDG standard paths.
// If no config file is found, returns a config with all default values.
// If a config file is found but fails to load/validate, returns an error.
func LoadWithDefaults() (*Config, error) {
	configPath := DetectConfigPath()
	if configPath == "" {
		cfg := DefaultConfig()
		applyEnvOverrides(cfg)
		expandPaths(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, &errors.ConfigError{Err: fmt.Errorf("%w: %s", errors.ErrInvalid, err)}
		}
		return cfg, nil
	}

	return Load(configPath)
}

// LoadFrom loads path when it is non-empty and falls back to LoadWithDefaults.
func LoadFrom(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	return LoadWithDefaults()
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables follow the pattern: AOSS_<SECTION>_<FIELD>
//
// Examples:
// - AOSS_REMOTE_ENDPOINT overrides [remote].endpoint
// - AOSS_REMOTE_API_KEY overrides [remote].api_key
// - AOSS_PROVISIONING_STEP_DELAY overrides [provisioning].step_delay
//
// Boolean fields: use "true"/"false" strings
// Duration fields: Go duration strings ("2s", "500ms")
func applyEnvOverrides(c *Config) {
	applyString := func(key string, target *string) {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			*target = val
		}
	}

	applyBool := func(key string, target *bool) {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			switch strings.ToLower(val) {
			case "true", "1", "yes", "on":
				*target = true
			case "false", "0", "no", "off":
				*target = false
			}
		}
	}

	applyInt := func(key string, target *int) {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			var i int
			if _, err := fmt.Sscanf(val, "%d", &i); err == nil {
				*target = i
			}
		}
	}

	applyDuration := func(key string, target *Duration) {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			if d, err := time.ParseDuration(val); err == nil {
				target.Duration = d
			}
		}
	}

	// Remote section
	applyString("AOSS_REMOTE_ENDPOINT", &c.Remote.Endpoint)
	applyString("AOSS_REMOTE_REGION", &c.Remote.Region)
	applyString("AOSS_REMOTE_AUTH_MODE", &c.Remote.AuthMode)
	applyString("AOSS_REMOTE_API_KEY", &c.Remote.APIKey)
	applyDuration("AOSS_REMOTE_TIMEOUT", &c.Remote.Timeout)
	applyInt("AOSS_REMOTE_MAX_RETRIES", &c.Remote.MaxRetries)

	// Storage section
	applyString("AOSS_STORAGE_PATH", &c.Storage.Path)

	// Provisioning section
	applyDuration("AOSS_PROVISIONING_STEP_DELAY", &c.Provisioning.StepDelay)
	applyDuration("AOSS_PROVISIONING_COMPLETION_DELAY", &c.Provisioning.CompletionDelay)
	applyBool("AOSS_PROVISIONING_FAIL_FIRST_ATTEMPT", &c.Provisioning.FailFirstAttempt)
	applyInt("AOSS_PROVISIONING_FAIL_STEP", &c.Provisioning.FailStep)
	applyString("AOSS_PROVISIONING_BLUEPRINTS", &c.Provisioning.Blueprints)

	// Comments section
	applyString("AOSS_COMMENTS_AUTHOR", &c.Comments.Author)
	applyDuration("AOSS_COMMENTS_REFRESH_INTERVAL", &c.Comments.RefreshInterval)

	// Catalog section
	applyInt("AOSS_CATALOG_PAGE_SIZE", &c.Catalog.PageSize)

	// Log section
	applyString("AOSS_LOG_LEVEL", &c.Log.Level)
	applyString("AOSS_LOG_FILE", &c.Log.File)

	// TUI section
	applyBool("AOSS_TUI_ENABLED", &c.TUI.Enabled)
	applyString("AOSS_TUI_THEME", &c.TUI.Theme)
	applyBool("AOSS_TUI_MOUSE", &c.TUI.Mouse)
}

// expandPaths expands ~ to the home directory in file paths.
func expandPaths(c *Config) {
	c.Storage.Path = expandHome(c.Storage.Path)
	c.Log.File = expandHome(c.Log.File)
	c.Provisioning.Blueprints = expandHome(c.Provisioning.Blueprints)
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") || p == "~" {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, strings.TrimPrefix(strings.TrimPrefix(p, "~"), "/"))
		}
	}
	return p
}
