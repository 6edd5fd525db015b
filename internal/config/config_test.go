package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestDefaultConfig verifies that default values are correctly set.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	home, _ := os.UserHomeDir()

	tests := []struct {
		name string
		got  any
		want any
	}{
		// Remote section defaults
		{"remote.endpoint", cfg.Remote.Endpoint, ""},
		{"remote.region", cfg.Remote.Region, "us-east-1"},
		{"remote.auth_mode", cfg.Remote.AuthMode, "api_key"},
		{"remote.timeout", cfg.Remote.Timeout.Duration, 10 * time.Second},
		{"remote.max_retries", cfg.Remote.MaxRetries, 0},

		// Storage section defaults
		{"storage.path", cfg.Storage.Path, filepath.Join(home, ".local", "share", "aoss", "local.db")},

		// Provisioning section defaults
		{"provisioning.step_delay", cfg.Provisioning.StepDelay.Duration, 2 * time.Second},
		{"provisioning.completion_delay", cfg.Provisioning.CompletionDelay.Duration, 500 * time.Millisecond},
		{"provisioning.fail_first_attempt", cfg.Provisioning.FailFirstAttempt, true},
		{"provisioning.fail_step", cfg.Provisioning.FailStep, -1},

		// Comments section defaults
		{"comments.author", cfg.Comments.Author, "User"},
		{"comments.refresh_interval", cfg.Comments.RefreshInterval.Duration, 10 * time.Second},

		// Catalog section defaults
		{"catalog.page_size", cfg.Catalog.PageSize, 20},

		// Log section defaults
		{"log.level", cfg.Log.Level, "info"},

		// TUI section defaults
		{"tui.enabled", cfg.TUI.Enabled, true},
		{"tui.theme", cfg.TUI.Theme, "default"},
		{"tui.mouse", cfg.TUI.Mouse, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

// TestValidate checks each rejected field.
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad auth mode", func(c *Config) { c.Remote.AuthMode = "oauth" }, "remote.auth_mode"},
		{"api key missing", func(c *Config) { c.Remote.Endpoint = "https://example.com/graphql" }, "remote.api_key"},
		{"iam without region", func(c *Config) {
			c.Remote.Endpoint = "https://example.com/graphql"
			c.Remote.AuthMode = "iam"
			c.Remote.Region = ""
		}, "remote.region"},
		{"zero timeout", func(c *Config) { c.Remote.Timeout = D(0) }, "remote.timeout"},
		{"negative retries", func(c *Config) { c.Remote.MaxRetries = -1 }, "remote.max_retries"},
		{"empty storage", func(c *Config) { c.Storage.Path = "" }, "storage.path"},
		{"negative step delay", func(c *Config) { c.Provisioning.StepDelay = D(-time.Second) }, "provisioning.step_delay"},
		{"empty author", func(c *Config) { c.Comments.Author = "" }, "comments.author"},
		{"zero page size", func(c *Config) { c.Catalog.PageSize = 0 }, "catalog.page_size"},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"bad theme", func(c *Config) { c.TUI.Theme = "neon" }, "tui.theme"},
		{"no endpoint needs no key", func(c *Config) { c.Remote.APIKey = "" }, ""},
		{"memory storage", func(c *Config) { c.Storage.Path = ":memory:" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error mentioning %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestDuration_Text(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("1m30s")); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	if d.Duration != 90*time.Second {
		t.Errorf("Duration = %v, want 1m30s", d.Duration)
	}
	out, _ := d.MarshalText()
	if string(out) != "1m30s" {
		t.Errorf("MarshalText() = %q, want %q", out, "1m30s")
	}
	if err := d.UnmarshalText([]byte("soon")); err == nil {
		t.Error("UnmarshalText(\"soon\") = nil, want error")
	}
}
