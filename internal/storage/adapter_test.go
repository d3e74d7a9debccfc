package storage_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/JamesPrial/atlantis-todos/internal/storage"
)

// failingBackend returns err from every call.
type failingBackend struct {
	err error
}

func (f failingBackend) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingBackend) Put(context.Context, string, []byte) error  { return f.err }

func Test_Adapter_Key(t *testing.T) {
	t.Parallel()
	a := storage.NewAdapter(storage.NewMemoryBackend())
	if got := a.Key(); got != "atlantis-todos" {
		t.Errorf("Key() = %q, want %q", got, "atlantis-todos")
	}
}

func Test_Adapter_Load_EmptyValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value *string
	}{
		{name: "nothing stored", value: nil},
		{name: "empty string", value: ptr("")},
		{name: "whitespace", value: ptr("  \n")},
		{name: "null", value: ptr("null")},
		{name: "empty array", value: ptr("[]")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			b := storage.NewMemoryBackend()
			if tt.value != nil {
				if err := b.Put(ctx, storage.DefaultKey, []byte(*tt.value)); err != nil {
					t.Fatalf("Put() error: %v", err)
				}
			}

			got, err := storage.NewAdapter(b).Load(ctx)
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if got == nil {
				t.Error("Load() = nil, want empty non-nil slice")
			}
			if len(got) != 0 {
				t.Errorf("len(Load()) = %d, want 0", len(got))
			}
		})
	}
}

func Test_Adapter_Load_MalformedIsDeserializationError(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"{{{", `{"id":"a"}`, `[{"id":1}]`, `"text"`} {
		t.Run(raw, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			b := storage.NewMemoryBackend()
			if err := b.Put(ctx, storage.DefaultKey, []byte(raw)); err != nil {
				t.Fatalf("Put() error: %v", err)
			}

			_, err := storage.NewAdapter(b).Load(ctx)

			var decodeErr *storage.DeserializationError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("Load() error = %v, want *DeserializationError", err)
			}
			if decodeErr.Key != storage.DefaultKey {
				t.Errorf("Key = %q, want %q", decodeErr.Key, storage.DefaultKey)
			}
			if decodeErr.Unwrap() == nil {
				t.Error("Unwrap() = nil, want the decode error")
			}
		})
	}
}

func Test_Adapter_Load_BackendErrorIsWrapped(t *testing.T) {
	t.Parallel()
	cause := errors.New("connection refused")

	_, err := storage.NewAdapter(failingBackend{err: cause}).Load(context.Background())

	if !errors.Is(err, cause) {
		t.Fatalf("Load() error = %v, want wrapped cause", err)
	}
	var decodeErr *storage.DeserializationError
	if errors.As(err, &decodeErr) {
		t.Error("backend failure must not be reported as a DeserializationError")
	}
}

func Test_Adapter_Save_NilWritesEmptyArray(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b := storage.NewMemoryBackend()

	if err := storage.NewAdapter(b).Save(ctx, nil); err != nil {
		t.Fatalf("Save(nil) error: %v", err)
	}

	got, err := b.Get(ctx, storage.DefaultKey)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if string(got) != "[]" {
		t.Errorf("stored = %q, want %q", got, "[]")
	}
}

func Test_Adapter_Save_UsesCamelCaseFields(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b := storage.NewMemoryBackend()

	task := storage.Task{ID: "a", Text: "Find trident", Completed: true, CreatedAt: 42}
	if err := storage.NewAdapter(b).Save(ctx, []storage.Task{task}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	raw, err := b.Get(ctx, storage.DefaultKey)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("stored value is not a JSON array: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("decoded %d entries, want 1", len(decoded))
	}
	for _, field := range []string{"id", "text", "completed", "createdAt"} {
		if _, ok := decoded[0][field]; !ok {
			t.Errorf("stored task missing field %q: %s", field, raw)
		}
	}
}

func Test_Adapter_Save_BackendErrorIsWrapped(t *testing.T) {
	t.Parallel()
	cause := errors.New("read-only file system")

	err := storage.NewAdapter(failingBackend{err: cause}).Save(context.Background(), []storage.Task{})
	if !errors.Is(err, cause) {
		t.Errorf("Save() error = %v, want wrapped cause", err)
	}
}

func ptr(s string) *string {
	return &s
}
