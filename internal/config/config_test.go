package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JamesPrial/atlantis-todos/internal/config"
)

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test. t.Setenv restores the originals afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"TODO_PROJECT_DIR",
		"TODO_DEBUG",
		"TODO_HTTP_ADDR",
		"TODO_STORAGE_BACKEND",
		"TODO_STORAGE_JSON_DIR",
		"TODO_STORAGE_SQLITE_PATH",
		"TODO_STORAGE_POSTGRES_URL",
		"TODO_STORAGE_NEO4J_URI",
		"TODO_STORAGE_NEO4J_USER",
		"TODO_STORAGE_NEO4J_PASSWORD",
		"TODO_STORAGE_NEO4J_DATABASE",
	} {
		t.Setenv(name, "")
		if err := os.Unsetenv(name); err != nil {
			t.Fatalf("Unsetenv(%s): %v", name, err)
		}
	}
}

func Test_Load_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd() error: %v", err)
	}

	want := &config.Config{
		ProjectDir: cwd,
		Storage: config.Storage{
			Backend:   "json",
			Neo4jUser: "neo4j",
		},
		HTTP: config.HTTP{Addr: ":8080"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func Test_Load_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TODO_PROJECT_DIR", "/srv/project")
	t.Setenv("TODO_DEBUG", "true")
	t.Setenv("TODO_HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("TODO_STORAGE_BACKEND", "SQLite")
	t.Setenv("TODO_STORAGE_SQLITE_PATH", "data/todos.db")
	t.Setenv("TODO_STORAGE_NEO4J_URI", "neo4j://db:7687")
	t.Setenv("TODO_STORAGE_NEO4J_PASSWORD", "secret")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	want := &config.Config{
		ProjectDir: "/srv/project",
		Debug:      true,
		HTTP:       config.HTTP{Addr: "127.0.0.1:9000"},
		Storage: config.Storage{
			Backend:       "sqlite",
			SQLitePath:    "data/todos.db",
			Neo4jURI:      "neo4j://db:7687",
			Neo4jUser:     "neo4j",
			Neo4jPassword: "secret",
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func Test_Load_ConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "atlantis.yaml")
	content := `project_dir: /from/file
storage:
  backend: postgres
  postgres_url: postgres://u:p@localhost/todos
http:
  addr: ":7070"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	// Environment beats the file
	t.Setenv("TODO_HTTP_ADDR", ":6060")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.ProjectDir != "/from/file" {
		t.Errorf("ProjectDir = %q, want /from/file", cfg.ProjectDir)
	}
	if cfg.Storage.Backend != "postgres" {
		t.Errorf("Backend = %q, want postgres", cfg.Storage.Backend)
	}
	if cfg.Storage.PostgresURL != "postgres://u:p@localhost/todos" {
		t.Errorf("PostgresURL = %q", cfg.Storage.PostgresURL)
	}
	if cfg.HTTP.Addr != ":6060" {
		t.Errorf("HTTP.Addr = %q, want env value :6060", cfg.HTTP.Addr)
	}
}

func Test_Load_MissingConfigFile(t *testing.T) {
	clearEnv(t)

	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() with missing file should fail")
	}
}

func Test_Load_BlankBackendFallsBackToJSON(t *testing.T) {
	clearEnv(t)
	t.Setenv("TODO_STORAGE_BACKEND", "   ")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Storage.Backend != "json" {
		t.Errorf("Backend = %q, want json", cfg.Storage.Backend)
	}
}
