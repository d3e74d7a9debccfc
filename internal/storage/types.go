// Package storage provides the task record type and the key-value backends
// used to persist the task list.
//
// The whole list is stored as a single JSON array under one well-known key.
// Backends only move opaque bytes; encoding and decoding live in Adapter.
package storage

import "context"

// DefaultKey is the storage key the task list is persisted under.
const DefaultKey = "atlantis-todos"

// Task represents a single item on the task list.
//
// The JSON tags use camelCase to match the persisted browser format.
type Task struct {
	// ID is an opaque identifier assigned at creation. It never changes.
	ID string `json:"id" yaml:"id"`

	// Text is the trimmed, non-empty task description.
	Text string `json:"text" yaml:"text"`

	// Completed reports whether the task has been checked off.
	Completed bool `json:"completed" yaml:"completed"`

	// CreatedAt is the creation time in milliseconds since the Unix epoch.
	CreatedAt int64 `json:"createdAt" yaml:"createdAt"`
}

// StorageBackend defines the contract for key-value persistence.
//
// Put overwrites the whole value for a key; there are no partial updates.
type StorageBackend interface {
	// Get returns the stored value for key.
	//
	// Returns ErrNotFound if nothing has been stored under key yet.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the value stored under key.
	Put(ctx context.Context, key string, value []byte) error
}
