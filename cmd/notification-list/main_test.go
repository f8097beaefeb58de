package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunReturnsConfigErrors(t *testing.T) {
	dir := t.TempDir()
	err := run(flags{
		configPath: filepath.Join(dir, "missing.yaml"),
		envFile:    filepath.Join(dir, "missing.env"),
		logLevel:   "error",
	})
	if err == nil || !strings.HasPrefix(err.Error(), "config:") {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestRunSeedsAndRendersWithSQLite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data", "notifications.db")
	t.Setenv("NOTIFY_STORAGE_DRIVER", "sqlite")
	t.Setenv("NOTIFY_STORAGE_DSN", "file:"+path)

	err := run(flags{
		envFile:  filepath.Join(dir, "missing.env"),
		logLevel: "error",
		render:   true,
		seed:     true,
		userID:   3,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected database file: %v", err)
	}
}

func TestRunRenderFailsOnUnsupportedDriver(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NOTIFY_STORAGE_DRIVER", "postgres")

	err := run(flags{envFile: filepath.Join(dir, "missing.env"), logLevel: "error", render: true})
	if err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}
