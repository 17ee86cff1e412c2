// Package pathutil resolves and redacts the file paths the connectivity
// pipeline reads and writes.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RedactPath reduces a full path to .../<parent>/<basename> for log output.
// For example, "/data/brunel/ee.wmat" becomes ".../brunel/ee.wmat".
func RedactPath(path string) string {
	if path == "" {
		return ""
	}
	cleaned := filepath.Clean(path)
	dir := filepath.Dir(cleaned)
	base := filepath.Base(cleaned)
	parent := filepath.Base(dir)
	if parent == "." || parent == string(filepath.Separator) {
		return base
	}
	return ".../" + parent + "/" + base
}

// ResolveDataPath joins a relative weight-file path onto dataDir. Absolute
// paths, empty paths and an empty dataDir leave path unchanged apart from
// cleaning.
func ResolveDataPath(dataDir, path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) || dataDir == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(dataDir, path)
}

// EnsureDir creates dir (and parents) for output files.
func EnsureDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("ensure dir: path is empty")
	}
	if strings.ContainsRune(dir, '\x00') {
		return fmt.Errorf("ensure dir: path contains null byte")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("ensure dir %s: %w", RedactPath(dir), err)
	}
	return nil
}
