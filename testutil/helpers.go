package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// WriteFile writes data to name under dir and returns the full path.
func WriteFile(tb testing.TB, dir, name string, data []byte) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		tb.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// ListFiles returns the sorted names of the entries in dir. A missing
// directory yields an empty list.
func ListFiles(tb testing.TB, dir string) []string {
	tb.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		tb.Fatalf("failed to list %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// AssertEmptyDir fails the test if dir contains any entries.
func AssertEmptyDir(tb testing.TB, dir string) {
	tb.Helper()
	if names := ListFiles(tb, dir); len(names) > 0 {
		tb.Errorf("expected %s to be empty, found %v", dir, names)
	}
}
