// Package pathutil resolves user-supplied storage paths against a project
// directory and refuses anything that would land outside it.
package pathutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrEmptyPath is returned for empty or whitespace-only paths.
	ErrEmptyPath = errors.New("path is empty or whitespace-only")

	// ErrNullByte is returned for paths containing \x00.
	ErrNullByte = errors.New("path contains null byte")

	// ErrEscapesBase is returned when the resolved path is outside the base directory.
	ErrEscapesBase = errors.New("path escapes base directory")
)

// ResolveSafePath resolves userPath relative to baseDir and returns the
// symlink-free absolute path, provided it is contained in baseDir.
//
// Relative paths are joined with baseDir; absolute paths are checked as-is.
// The target does not have to exist yet: the deepest existing ancestor is
// resolved and the missing components are appended unchanged.
//
// Example:
//
//	dir, err := ResolveSafePath("/home/user/project", ".atlantis")
//	// dir is /home/user/project/.atlantis (after symlink resolution)
func ResolveSafePath(baseDir, userPath string) (string, error) {
	if strings.TrimSpace(userPath) == "" {
		return "", ErrEmptyPath
	}
	if strings.Contains(userPath, "\x00") {
		return "", ErrNullByte
	}

	candidate := userPath
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(baseDir, candidate)
	}

	resolved, err := resolveExisting(filepath.Clean(candidate))
	if err != nil {
		return "", err
	}

	base, err := filepath.EvalSymlinks(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}

	if !within(base, resolved) {
		return "", fmt.Errorf("%w: %s", ErrEscapesBase, userPath)
	}

	return resolved, nil
}

// within reports whether target is base or lies below it.
func within(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// resolveExisting evaluates symlinks on the longest existing prefix of path
// and re-appends the components that do not exist yet.
func resolveExisting(path string) (string, error) {
	var missing []string
	current := path

	for {
		if _, err := os.Lstat(current); err == nil {
			resolved, err := filepath.EvalSymlinks(current)
			if err != nil {
				return "", fmt.Errorf("failed to resolve symlinks: %w", err)
			}
			for i := len(missing) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, missing[i])
			}
			return resolved, nil
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to stat %s: %w", current, err)
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("no existing parent directory found for %s", path)
		}
		missing = append(missing, filepath.Base(current))
		current = parent
	}
}
