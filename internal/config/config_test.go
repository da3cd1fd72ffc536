package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"replayvault/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file")
	}
	if !strings.Contains(cfg.Source.BaseURL, "$id$") {
		t.Fatalf("expected default base URL template, got %q", cfg.Source.BaseURL)
	}
	if cfg.Source.NotFoundStatus != 400 {
		t.Fatalf("expected default not-found status 400, got %d", cfg.Source.NotFoundStatus)
	}
}

func TestLoadExpandsDerivedPaths(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
[paths]
data_dir = "`+dir+`"
`)
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %s, got %s (exists=%v)", path, resolved, exists)
	}
	if cfg.Paths.ReplayDir != filepath.Join(dir, "replays") {
		t.Fatalf("unexpected replay dir: %s", cfg.Paths.ReplayDir)
	}
	if cfg.DatabasePath() != filepath.Join(dir, "replays.db") {
		t.Fatalf("unexpected database path: %s", cfg.DatabasePath())
	}
}

func TestLoadRejectsBadTemplate(t *testing.T) {
	path := writeConfig(t, `
[source]
base_url = "https://example.com/download?id=5"
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for base_url without $id$ placeholder")
	}
}

func TestLoadRejectsInvalidNotFoundStatus(t *testing.T) {
	path := writeConfig(t, `
[source]
not_found_status = 200
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for not_found_status 200")
	}
}

func TestLoadRejectsInvertedCrawlRange(t *testing.T) {
	path := writeConfig(t, `
[crawl]
start_id = 100
max_id = 10
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for max_id below start_id")
	}
}

func TestCreateSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if err := config.CreateSample(path); err == nil {
		t.Fatal("expected error when sample already exists")
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("generated sample does not load: %v", err)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected log format: %q", cfg.Logging.Format)
	}
}
