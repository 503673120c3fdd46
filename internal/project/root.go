package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"spbg/internal/diag"
)

// ConfigFileName is the optional per-context configuration file.
const ConfigFileName = "spbg.toml"

// CheckContext resolves dir and fails unless it is an existing directory.
func CheckContext(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", diag.Errorf(diag.CtxNotDirectory, "cannot resolve %q: %v", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", diag.Errorf(diag.CtxNotDirectory, "context %s does not exist", dir)
	}
	if !info.IsDir() {
		return "", diag.Errorf(diag.CtxNotDirectory, "context %s is not a directory", dir)
	}
	return abs, nil
}

// FindConfig walks up from startDir to locate spbg.toml, so one file can
// serve every model below it.
func FindConfig(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}
