// Package testutil builds source tree fixtures for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll(%s) error: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", path, err)
	}
}

// ReadFile reads content from a file.
func ReadFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error: %v", path, err)
	}
	return string(data)
}

// CreateFileTree creates multiple files from a map of slash-separated
// relative path -> content.
func CreateFileTree(t testing.TB, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		WriteFile(t, filepath.Join(root, filepath.FromSlash(name)), content)
	}
}

// NewFileTree creates files below a fresh temporary directory and returns it.
func NewFileTree(t testing.TB, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	CreateFileTree(t, root, files)
	return root
}

// RelPaths returns paths relative to root, slash-separated, as a set.
func RelPaths(t testing.TB, root string, paths []string) map[string]bool {
	t.Helper()
	found := make(map[string]bool, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			t.Fatalf("Rel(%s) error: %v", p, err)
		}
		found[filepath.ToSlash(rel)] = true
	}
	return found
}
