// Package config provides configuration management for aoss-console.
//
// The configuration is stored in TOML format and supports validation
// and default values for all fields.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the top-level configuration struct for aoss-console.
// It contains all configuration sections as embedded structs.
type Config struct {
	Remote       RemoteConfig       `toml:"remote"`
	Storage      StorageConfig      `toml:"storage"`
	Provisioning ProvisioningConfig `toml:"provisioning"`
	Comments     CommentsConfig     `toml:"comments"`
	Catalog      CatalogConfig      `toml:"catalog"`
	Log          LogConfig          `toml:"log"`
	TUI          TUIConfig          `toml:"tui"`
}

// RemoteConfig contains settings for the GraphQL comment store.
type RemoteConfig struct {
	// Endpoint is the GraphQL endpoint URL. Empty disables the remote store
	// and every comment operation goes straight to local storage.
	Endpoint string `toml:"endpoint"`

	// Region is the AWS region used when signing requests.
	Region string `toml:"region"`

	// AuthMode selects how requests are authorized.
	// Valid values: "api_key", "iam", "none".
	AuthMode string `toml:"auth_mode"`

	// APIKey is the static key sent as x-api-key in "api_key" mode.
	APIKey string `toml:"api_key"`

	// Timeout bounds a single HTTP request.
	Timeout Duration `toml:"timeout"`

	// MaxRetries is the number of retries after the first attempt.
	// Zero keeps remote calls one-shot.
	MaxRetries int `toml:"max_retries"`
}

// StorageConfig contains local fallback store settings.
type StorageConfig struct {
	// Path is the SQLite file backing the local store (":memory:" allowed).
	Path string `toml:"path"`
}

// ProvisioningConfig controls the simulated creation workflow.
type ProvisioningConfig struct {
	// StepDelay is how long each step stays in progress.
	StepDelay Duration `toml:"step_delay"`

	// CompletionDelay is the pause between the last step succeeding and
	// the completion callback.
	CompletionDelay Duration `toml:"completion_delay"`

	// FailFirstAttempt makes the first attempt of every workflow fail so the
	// retry path can be exercised.
	FailFirstAttempt bool `toml:"fail_first_attempt"`

	// FailStep is the index of the failing step. Negative means the last step.
	FailStep int `toml:"fail_step"`

	// Blueprints is an optional YAML file whose step lists replace the
	// built-in ones of the same kind and variant.
	Blueprints string `toml:"blueprints"`
}

// CommentsConfig contains comments overlay settings.
type CommentsConfig struct {
	// Author is the author recorded on new comments.
	Author string `toml:"author"`

	// RefreshInterval is how often the TUI reloads comments. Zero disables polling.
	RefreshInterval Duration `toml:"refresh_interval"`
}

// CatalogConfig contains list screen settings.
type CatalogConfig struct {
	// PageSize is the number of rows per list page.
	PageSize int `toml:"page_size"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is the minimum log level.
	// Valid values: "debug", "info", "warn", "error".
	Level string `toml:"level"`

	// File receives log output while the TUI owns the terminal.
	File string `toml:"file"`
}

// TUIConfig contains terminal UI settings.
type TUIConfig struct {
	// Enabled controls whether to use the TUI (when false, falls back to CLI).
	Enabled bool `toml:"enabled"`

	// Theme is the TUI theme name.
	// Valid values: "default", "dark", "light".
	Theme string `toml:"theme"`

	// Mouse enables mouse capture, which pin placement needs.
	Mouse bool `toml:"mouse"`
}

// Duration is a time.Duration that reads and writes as a string like "2s".
type Duration struct {
	time.Duration
}

// D is shorthand for building a Duration.
func D(d time.Duration) Duration { return Duration{Duration: d} }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

// DefaultConfig returns a Config with all default values set.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Remote: RemoteConfig{
			Endpoint:   "",
			Region:     "us-east-1",
			AuthMode:   "api_key",
			APIKey:     "",
			Timeout:    D(10 * time.Second),
			MaxRetries: 0,
		},
		Storage: StorageConfig{
			Path: filepath.Join(homeDir, ".local", "share", "aoss", "local.db"),
		},
		Provisioning: ProvisioningConfig{
			StepDelay:        D(2 * time.Second),
			CompletionDelay:  D(500 * time.Millisecond),
			FailFirstAttempt: true,
			FailStep:         -1,
		},
		Comments: CommentsConfig{
			Author:          "User",
			RefreshInterval: D(10 * time.Second),
		},
		Catalog: CatalogConfig{
			PageSize: 20,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(homeDir, ".local", "state", "aoss", "aoss.log"),
		},
		TUI: TUIConfig{
			Enabled: true,
			Theme:   "default",
			Mouse:   true,
		},
	}
}

// Validate checks the configuration for valid values.
// Returns a nil error if the config is valid, or an error describing the problem.
func (c *Config) Validate() error {
	// Validate Remote section
	validAuthModes := map[string]bool{
		"api_key": true,
		"iam":     true,
		"none":    true,
	}
	if !validAuthModes[c.Remote.AuthMode] {
		return fmt.Errorf("remote.auth_mode must be one of: api_key, iam, none; got %q", c.Remote.AuthMode)
	}
	if c.Remote.Endpoint != "" {
		if c.Remote.AuthMode == "api_key" && c.Remote.APIKey == "" {
			return fmt.Errorf("remote.api_key cannot be empty when remote.auth_mode is api_key")
		}
		if c.Remote.AuthMode == "iam" && c.Remote.Region == "" {
			return fmt.Errorf("remote.region cannot be empty when remote.auth_mode is iam")
		}
	}
	if c.Remote.Timeout.Duration <= 0 {
		return fmt.Errorf("remote.timeout must be > 0; got %s", c.Remote.Timeout)
	}
	if c.Remote.MaxRetries < 0 {
		return fmt.Errorf("remote.max_retries must be >= 0; got %d", c.Remote.MaxRetries)
	}

	// Validate Storage section
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path cannot be empty")
	}

	// Validate Provisioning section
	if c.Provisioning.StepDelay.Duration < 0 {
		return fmt.Errorf("provisioning.step_delay must be >= 0; got %s", c.Provisioning.StepDelay)
	}
	if c.Provisioning.CompletionDelay.Duration < 0 {
		return fmt.Errorf("provisioning.completion_delay must be >= 0; got %s", c.Provisioning.CompletionDelay)
	}

	// Validate Comments section
	if c.Comments.Author == "" {
		return fmt.Errorf("comments.author cannot be empty")
	}
	if c.Comments.RefreshInterval.Duration < 0 {
		return fmt.Errorf("comments.refresh_interval must be >= 0; got %s", c.Comments.RefreshInterval)
	}

	// Validate Catalog section
	if c.Catalog.PageSize < 1 {
		return fmt.Errorf("catalog.page_size must be >= 1; got %d", c.Catalog.PageSize)
	}

	// Validate Log section
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", c.Log.Level)
	}

	// Validate TUI section
	validThemes := map[string]bool{
		"default": true,
		"dark":    true,
		"light":   true,
	}
	if !validThemes[c.TUI.Theme] {
		return fmt.Errorf("tui.theme must be one of: default, dark, light; got %q", c.TUI.Theme)
	}

	return nil
}

// RemoteEnabled reports whether a GraphQL endpoint is configured.
func (c *Config) RemoteEnabled() bool {
	return c.Remote.Endpoint != ""
}
