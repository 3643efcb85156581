// Package test loads JSON fixtures for package-level suites. Paths are
// resolved relative to the calling package's directory.
package test

import (
	"os"
	"path/filepath"
)

func LoadFixture(relativePath string) ([]byte, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(dir, relativePath))
}
