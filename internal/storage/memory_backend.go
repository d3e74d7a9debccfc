package storage

import (
	"bytes"
	"context"
	"sync"
)

// MemoryBackend implements StorageBackend in process memory.
//
// Nothing survives the process. It also counts writes, which makes it the
// backend of choice for tests.
type MemoryBackend struct {
	mu     sync.Mutex
	values map[string][]byte
	writes int
}

// NewMemoryBackend creates an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		values: make(map[string][]byte),
	}
}

// Get returns a copy of the value stored under key.
func (b *MemoryBackend) Get(ctx context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	value, ok := b.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(value), nil
}

// Put stores a copy of value under key.
func (b *MemoryBackend) Put(ctx context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.values[key] = bytes.Clone(value)
	b.writes++
	return nil
}

// Writes returns the number of Put calls so far.
func (b *MemoryBackend) Writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes
}
