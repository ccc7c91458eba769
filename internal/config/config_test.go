package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
username: alice
password: hunter2
maps_api_key: key-123
home_address: 100 Main St, Seattle, WA 98101
base_url: https://example.com/site
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Username != "alice" {
		t.Errorf("Username = %q", cfg.Username)
	}
	if cfg.Password != "hunter2" {
		t.Errorf("Password = %q", cfg.Password)
	}
	if cfg.MapsAPIKey != "key-123" {
		t.Errorf("MapsAPIKey = %q", cfg.MapsAPIKey)
	}
	if cfg.BaseURL != "https://example.com/site" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.DataDir != DefaultDataDir {
		t.Errorf("DataDir = %q, want default", cfg.DataDir)
	}
	if cfg.OutputDir != DefaultOutputDir {
		t.Errorf("OutputDir = %q, want default", cfg.OutputDir)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfigFile(t, "username: bob\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, DefaultBaseURL)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfigFile(t, "username: carol\n")
	t.Setenv("EA_PASSWORD", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Password != "from-env" {
		t.Errorf("Password = %q, want env value", cfg.Password)
	}
}

func TestRequireCredentials(t *testing.T) {
	cfg := &Config{Username: "dave"}
	if err := cfg.RequireCredentials(); err == nil {
		t.Error("RequireCredentials() passed with missing password")
	}
	cfg.Password = "pw"
	if err := cfg.RequireCredentials(); err != nil {
		t.Errorf("RequireCredentials() error = %v", err)
	}
}
