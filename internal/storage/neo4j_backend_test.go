package storage_test

import (
	"context"
	"os"
	"testing"

	"github.com/JamesPrial/atlantis-todos/internal/storage"
)

// newTestNeo4jBackend connects to the server named by TODO_TEST_NEO4J_URI.
// Skips the test if the variable is unset.
func newTestNeo4jBackend(t *testing.T) *storage.Neo4jBackend {
	t.Helper()

	uri := os.Getenv("TODO_TEST_NEO4J_URI")
	if uri == "" {
		t.Skip("TODO_TEST_NEO4J_URI not set, skipping Neo4j integration tests")
	}

	user := os.Getenv("TODO_TEST_NEO4J_USER")
	if user == "" {
		user = "neo4j"
	}

	backend, err := storage.NewNeo4jBackend(context.Background(), uri, user, os.Getenv("TODO_TEST_NEO4J_PASSWORD"), "")
	if err != nil {
		t.Fatalf("NewNeo4jBackend() error: %v", err)
	}
	t.Cleanup(func() {
		if err := backend.Close(); err != nil {
			t.Logf("failed to close driver: %v", err)
		}
	})

	return backend
}

func Test_Neo4jBackend_Integration(t *testing.T) {
	backend := newTestNeo4jBackend(t)

	t.Run("contract", func(t *testing.T) {
		exerciseBackend(t, backend)
	})

	t.Run("adapter round trip", func(t *testing.T) {
		exerciseAdapterRoundTrip(t, backend)
	})
}

func Test_NewNeo4jBackend_Unreachable(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := storage.NewNeo4jBackend(ctx, "neo4j://127.0.0.1:1", "neo4j", "x", ""); err == nil {
		t.Error("NewNeo4jBackend() with unreachable server should fail")
	}
}

func Test_NewNeo4jBackend_BadURI(t *testing.T) {
	t.Parallel()

	if _, err := storage.NewNeo4jBackend(context.Background(), "ftp://nowhere", "neo4j", "x", ""); err == nil {
		t.Error("NewNeo4jBackend() with unsupported scheme should fail")
	}
}
