package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"debtwatch/internal/config"
	"debtwatch/internal/state"
)

// MustOpenStore opens a state.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *state.Store {
	t.Helper()

	store, err := state.Open(cfg)
	if err != nil {
		t.Fatalf("state.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// WriteCSV writes a CSV fixture of the given size into the test temp dir and
// returns its path. Size is padded with comment rows when larger than the
// header.
func WriteCSV(t testing.TB, name string, size int64) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, name)
	content := make([]byte, 0, size)
	header := []byte("id,summary,severity\n")
	content = append(content, header...)
	for int64(len(content)) < size {
		content = append(content, []byte("1,slow dashboard,MODERATE\n")...)
	}
	if size > 0 && int64(len(content)) > size {
		content = content[:size]
	}
	if size == 0 {
		content = nil
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write csv fixture: %v", err)
	}
	return path
}
