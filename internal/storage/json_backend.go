package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/natefinch/atomic"
)

// keyRegex limits keys to names that are safe to use as a file name.
var keyRegex = regexp.MustCompile(`^[A-Za-z0-9_-][A-Za-z0-9._-]*$`)

// JSONBackend implements StorageBackend with one JSON file per key.
//
// Values are written with an atomic replace so a crash mid-write never
// leaves a truncated file behind.
type JSONBackend struct {
	// Dir is the absolute path of the directory holding the value files.
	Dir string
}

// NewJSONBackend creates a new JSONBackend rooted at dir.
//
// The directory is created on the first Put.
func NewJSONBackend(dir string) *JSONBackend {
	return &JSONBackend{
		Dir: dir,
	}
}

// Path returns the file that holds the value for key.
func (b *JSONBackend) Path(key string) string {
	return filepath.Join(b.Dir, key+".json")
}

// Get reads the value file for key.
func (b *JSONBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(b.Path(key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read value file: %w", err)
	}

	return data, nil
}

// Put atomically replaces the value file for key.
func (b *JSONBackend) Put(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(b.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	// Trailing newline keeps the file friendly to line-oriented tools
	data := append(bytes.Clone(value), '\n')
	if err := atomic.WriteFile(b.Path(key), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write value file: %w", err)
	}

	return nil
}

func validateKey(key string) error {
	if !keyRegex.MatchString(key) {
		return fmt.Errorf("invalid storage key: %q", key)
	}
	return nil
}
