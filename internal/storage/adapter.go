package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Adapter reads and writes the complete task list as one JSON value.
type Adapter struct {
	backend StorageBackend
	key     string
}

// NewAdapter creates an Adapter that persists under DefaultKey.
func NewAdapter(backend StorageBackend) *Adapter {
	return &Adapter{
		backend: backend,
		key:     DefaultKey,
	}
}

// Key returns the storage key used by the adapter.
func (a *Adapter) Key() string {
	return a.key
}

// Load reads and decodes the stored task list.
//
// Returns an empty slice if nothing is stored or the stored value is blank.
// Returns a *DeserializationError if the value is not a JSON array of tasks,
// and a wrapped backend error if the read itself fails.
func (a *Adapter) Load(ctx context.Context) ([]Task, error) {
	data, err := a.backend.Get(ctx, a.key)
	if errors.Is(err, ErrNotFound) {
		return make([]Task, 0), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", a.key, err)
	}

	// A blank value is treated the same as a missing one
	if len(bytes.TrimSpace(data)) == 0 {
		return make([]Task, 0), nil
	}

	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, &DeserializationError{Key: a.key, Err: err}
	}

	// "null" decodes to a nil slice
	if tasks == nil {
		return make([]Task, 0), nil
	}

	return tasks, nil
}

// Save serializes the entire list and overwrites the stored value.
func (a *Adapter) Save(ctx context.Context, tasks []Task) error {
	// Ensure tasks is never nil to produce [] not null in JSON
	if tasks == nil {
		tasks = make([]Task, 0)
	}

	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}

	if err := a.backend.Put(ctx, a.key, data); err != nil {
		return fmt.Errorf("failed to write %q: %w", a.key, err)
	}

	return nil
}
