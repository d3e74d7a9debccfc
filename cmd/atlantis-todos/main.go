// Package main implements the atlantis-todos command.
//
// Exit codes:
//   - 0: Success
//   - 1: Error (bad arguments, configuration or storage failure)
//
// Environment variables (see internal/config):
//   - TODO_PROJECT_DIR: Optional. Anchors local storage paths (default: working directory).
//   - TODO_STORAGE_BACKEND: Optional. "json" (default), "sqlite", "postgres", "neo4j" or "memory".
//   - TODO_STORAGE_JSON_DIR, TODO_STORAGE_SQLITE_PATH: Optional. Custom local paths.
//   - TODO_STORAGE_POSTGRES_URL, TODO_STORAGE_NEO4J_URI: Required by those backends.
//   - TODO_HTTP_ADDR: Optional. Listen address for "serve".
//   - TODO_DEBUG: Optional. Enable debug logging.
package main

import (
	"os"

	"github.com/JamesPrial/atlantis-todos/internal/cli"
)

var version = "dev"

func main() {
	os.Exit(cli.Run(version, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
