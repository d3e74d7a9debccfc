// Package main implements the MCP server for atlantis-todos.
//
// It is equivalent to "atlantis-todos mcp": the task tools are served over
// stdio JSON-RPC (Model Context Protocol), with storage configured through
// the usual TODO_* environment variables and flags.
package main

import (
	"os"

	"github.com/JamesPrial/atlantis-todos/internal/cli"
)

var version = "dev"

func main() {
	args := append([]string{"mcp"}, os.Args[1:]...)
	os.Exit(cli.Run(version, args, os.Stdin, os.Stdout, os.Stderr))
}
