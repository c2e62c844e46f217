package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Server.BaseURL != "http://127.0.0.1:8000" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Server.HTTPTimeout != 10*time.Second {
		t.Errorf("HTTPTimeout = %v", cfg.Server.HTTPTimeout)
	}
	if cfg.Stream.ReadTimeout != 0 {
		t.Errorf("ReadTimeout = %v, want 0 (wait indefinitely)", cfg.Stream.ReadTimeout)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server:\n  base_url: https://flow.example.com\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.BaseURL != "https://flow.example.com" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
	// Untouched fields keep their defaults.
	if cfg.Server.HTTPTimeout != 10*time.Second {
		t.Errorf("HTTPTimeout = %v, want default", cfg.Server.HTTPTimeout)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load of a missing file should fail")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load of invalid YAML should fail")
	}
}
