package safeio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideBase is returned when a path resolves outside its base directory.
var ErrOutsideBase = errors.New("file path is outside base directory")

// Contained reports whether filePath resolves to a location inside baseDir.
// Both paths are made absolute first; baseDir itself counts as contained.
func Contained(baseDir, filePath string) (bool, error) {
	baseDirAbs, err := filepath.Abs(baseDir)
	if err != nil {
		return false, fmt.Errorf("failed to resolve base directory: %w", err)
	}
	filePathAbs, err := filepath.Abs(filePath)
	if err != nil {
		return false, fmt.Errorf("failed to resolve file path: %w", err)
	}
	rel, err := filepath.Rel(baseDirAbs, filePathAbs)
	if err != nil {
		return false, fmt.Errorf("failed to compute relative path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false, nil
	}
	return true, nil
}

// ReadFileContained reads a file only if it is contained within baseDir.
func ReadFileContained(baseDir, filePath string) ([]byte, error) {
	ok, err := Contained(baseDir, filePath)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOutsideBase
	}
	// #nosec G304 -- containment verified above
	return os.ReadFile(filePath)
}

// WriteFilePreservePerms writes data to path preserving existing file mode when possible.
// When the file does not exist, it uses a sane default of 0644.
func WriteFilePreservePerms(path string, data []byte) error {
	var mode os.FileMode = 0o644
	if st, err := os.Stat(path); err == nil {
		mode = st.Mode() & 0o777
		if mode == 0 {
			mode = 0o644
		}
	}
	return os.WriteFile(path, data, mode)
}

// WriteFileEnsureDir creates the parent directory of path if needed and then
// fully overwrites path with data.
func WriteFileEnsureDir(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return WriteFilePreservePerms(path, data)
}
