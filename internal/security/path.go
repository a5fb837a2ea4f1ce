// Package security validates file paths built from untrusted input
// before they touch the filesystem.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateFilePath rejects relative paths that could climb out of the
// directory they are joined onto.
func ValidateFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("file path cannot be empty")
	}

	clean := filepath.Clean(path)
	if strings.Contains(clean, "..") {
		return fmt.Errorf("path contains directory traversal: %s", path)
	}
	if filepath.IsAbs(clean) {
		return fmt.Errorf("absolute path not allowed: %s", path)
	}
	return nil
}

// ValidateFilePathWithBase ensures that joining path onto baseDir
// resolves to a location inside baseDir.
func ValidateFilePathWithBase(path, baseDir string) error {
	if err := ValidateFilePath(path); err != nil {
		return err
	}

	full := filepath.Clean(filepath.Join(baseDir, path))
	base := filepath.Clean(baseDir)
	if full != base && !strings.HasPrefix(full, base+string(filepath.Separator)) {
		return fmt.Errorf("path escapes base directory: %s", path)
	}
	return nil
}
