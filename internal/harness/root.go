package harness

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoRoot is returned when no go.mod is found above a location.
var ErrNoRoot = errors.New("no go.mod found")

// Root walks up from from (a file or directory) to the first directory
// holding go.mod.
func Root(from string) (string, error) {
	abs, err := filepath.Abs(from)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		abs = filepath.Dir(abs)
	}
	for dir := abs; ; {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%s: %w", from, ErrNoRoot)
		}
		dir = parent
	}
}

// TestDataDir returns <root>/testdata for the root above from.
func TestDataDir(from string) (string, error) {
	root, err := Root(from)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "testdata"), nil
}
