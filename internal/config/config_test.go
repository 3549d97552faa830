package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"debtwatch/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if cfg.Upload.ConflictPolicy != config.ConflictPolicyAdvisory {
		t.Fatalf("expected advisory default conflict policy, got %q", cfg.Upload.ConflictPolicy)
	}
	if cfg.ConflictBlocks() {
		t.Fatal("advisory policy should not block")
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %q, got %q", path, resolved)
	}
	if cfg.API.BaseURL == "" {
		t.Fatal("expected default api.base_url")
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[api]
base_url = "https://debt.example.com/api/"
request_timeout = 30

[upload]
conflict_policy = "BLOCK"
default_organization = "  Acme  "
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.API.BaseURL != "https://debt.example.com/api" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.API.BaseURL)
	}
	if !cfg.ConflictBlocks() {
		t.Fatal("expected block policy after normalization")
	}
	if cfg.Upload.DefaultOrganization != "Acme" {
		t.Fatalf("expected trimmed organization, got %q", cfg.Upload.DefaultOrganization)
	}
}

func TestLoadRejectsUnknownConflictPolicy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[upload]\nconflict_policy = \"maybe\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "conflict_policy") {
		t.Fatalf("expected conflict_policy error, got %v", err)
	}
}

func TestLoadRejectsBadLogFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unsupported log format")
	}
}

func TestAPITokenEnvFallback(t *testing.T) {
	t.Setenv("DEBTWATCH_API_TOKEN", "secret-token")
	path := filepath.Join(t.TempDir(), "missing.toml")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.Token != "secret-token" {
		t.Fatalf("expected token from environment, got %q", cfg.API.Token)
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[upload]") {
		t.Fatal("sample config missing [upload] section")
	}
}
