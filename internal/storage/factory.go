package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/JamesPrial/atlantis-todos/internal/config"
	"github.com/JamesPrial/atlantis-todos/internal/pathutil"
)

// DataDirName is the per-project directory holding local storage files.
const DataDirName = ".atlantis"

// GetStorageBackend returns the backend selected by cfg.Backend.
//
// Backends:
//   - "json" (default): value files in cfg.JSONDir or <projectDir>/.atlantis
//   - "sqlite": cfg.SQLitePath or <projectDir>/.atlantis/todos.db
//   - "postgres": cfg.PostgresURL (required)
//   - "neo4j": cfg.Neo4jURI (required)
//   - "memory": nothing persists past the process
//
// Custom file paths must stay inside projectDir. Backends holding a driver
// also implement io.Closer.
func GetStorageBackend(ctx context.Context, projectDir string, cfg config.Storage) (StorageBackend, error) {
	backendType := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backendType == "" {
		backendType = "json"
	}

	switch backendType {
	case "json":
		dir, err := resolvePath(projectDir, cfg.JSONDir, DataDirName)
		if err != nil {
			return nil, fmt.Errorf("invalid JSON storage directory: %w", err)
		}
		return NewJSONBackend(dir), nil

	case "sqlite":
		path, err := resolvePath(projectDir, cfg.SQLitePath, filepath.Join(DataDirName, "todos.db"))
		if err != nil {
			return nil, fmt.Errorf("invalid SQLite database path: %w", err)
		}
		return NewSQLiteBackend(ctx, path)

	case "postgres":
		if strings.TrimSpace(cfg.PostgresURL) == "" {
			return nil, fmt.Errorf("postgres backend requires a connection string (TODO_STORAGE_POSTGRES_URL)")
		}
		return NewPostgresBackend(ctx, cfg.PostgresURL)

	case "neo4j":
		if strings.TrimSpace(cfg.Neo4jURI) == "" {
			return nil, fmt.Errorf("neo4j backend requires a URI (TODO_STORAGE_NEO4J_URI)")
		}
		return NewNeo4jBackend(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase)

	case "memory":
		return NewMemoryBackend(), nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %q. Expected 'json', 'sqlite', 'postgres', 'neo4j' or 'memory'", backendType)
	}
}

// resolvePath validates a custom path against projectDir, or falls back to
// <projectDir>/<fallback> when custom is blank.
func resolvePath(projectDir, custom, fallback string) (string, error) {
	if strings.TrimSpace(custom) == "" {
		return filepath.Join(projectDir, fallback), nil
	}
	return pathutil.ResolveSafePath(projectDir, custom)
}
