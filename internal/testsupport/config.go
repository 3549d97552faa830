package testsupport

import (
	"path/filepath"
	"testing"

	"debtwatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.API.BaseURL = "http://127.0.0.1:0/api"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithAPIBaseURL points the test config at a live (usually httptest) backend.
func WithAPIBaseURL(baseURL string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.API.BaseURL = baseURL
	}
}

// WithConflictPolicy overrides the upload conflict policy.
func WithConflictPolicy(policy string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Upload.ConflictPolicy = policy
	}
}
