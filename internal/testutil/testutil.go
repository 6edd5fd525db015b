// Package testutil provides helper functions for testing.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chazuruo/aoss-console/internal/config"
)

// WriteFile writes content to name inside a fresh temporary directory and
// returns the path. The directory is removed when the test completes.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// WriteConfig writes a config suited to tests and returns its path. The
// local store and log file live in a temporary directory, workflow steps
// take a millisecond and no attempt fails unless mutate says otherwise.
func WriteConfig(t *testing.T, mutate func(*config.Config)) string {
	t.Helper()

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Storage.Path = filepath.Join(dir, "local.db")
	cfg.Log.File = filepath.Join(dir, "aoss.log")
	cfg.Log.Level = "error"
	cfg.Provisioning.StepDelay = config.D(time.Millisecond)
	cfg.Provisioning.CompletionDelay = config.D(time.Millisecond)
	cfg.Provisioning.FailFirstAttempt = false
	cfg.Comments.Author = "tester"
	if mutate != nil {
		mutate(cfg)
	}

	path := filepath.Join(dir, "config.toml")
	if err := config.Write(path, cfg); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}
