package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"debtwatch/internal/config"
	"debtwatch/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("DEBTWATCH_API_TOKEN", "")

	cfg := testsupport.NewConfig(t, opts...)

	configPath := filepath.Join(homeDir, ".config", "debtwatch", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()

	content := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q

[api]
base_url = %q
token = %q
request_timeout = %d

[upload]
conflict_policy = %q
default_organization = %q

[notifications]
uploads = %t
workflow = %t
errors = %t

[logging]
format = "console"
level = "warn"
`,
		cfg.Paths.DataDir, cfg.Paths.LogDir,
		cfg.API.BaseURL, cfg.API.Token, cfg.API.RequestTimeout,
		cfg.Upload.ConflictPolicy, cfg.Upload.DefaultOrganization,
		cfg.Notifications.Uploads, cfg.Notifications.Workflow, cfg.Notifications.Errors,
	)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()

	cmd, cliCtx := newRootCommand()
	defer func() {
		if err := cliCtx.close(); err != nil {
			t.Errorf("close command context: %v", err)
		}
	}()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append(args, "--config", configPath)
	}
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("output missing %q:\n%s", needle, haystack)
	}
}
