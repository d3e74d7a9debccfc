package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by a StorageBackend when a key has no value.
var ErrNotFound = errors.New("storage: key not found")

// DeserializationError reports a stored value that is not a valid task list.
type DeserializationError struct {
	Key string
	Err error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("failed to deserialize stored value for %q: %v", e.Key, e.Err)
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}
