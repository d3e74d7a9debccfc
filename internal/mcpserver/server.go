package mcpserver

import (
	"errors"

	"github.com/mark3labs/mcp-go/server"

	"github.com/JamesPrial/atlantis-todos/internal/todo"
)

// NewServer creates and configures a new MCP server with all task tools
// registered against store.
func NewServer(store *todo.Store, version string) (*server.MCPServer, error) {
	if store == nil {
		return nil, errors.New("mcpserver: nil store")
	}

	h := NewHandlers(store)

	s := server.NewMCPServer(
		"atlantis-todos",
		version,
		server.WithToolCapabilities(true),
	)

	// Mutations
	s.AddTool(addTaskTool(), h.HandleAddTask)
	s.AddTool(toggleTaskTool(), h.HandleToggleTask)
	s.AddTool(removeTaskTool(), h.HandleRemoveTask)
	s.AddTool(editTaskTool(), h.HandleEditTask)
	s.AddTool(clearCompletedTool(), h.HandleClearCompleted)

	// Views
	s.AddTool(listTasksTool(), h.HandleListTasks)
	s.AddTool(taskStatsTool(), h.HandleTaskStats)

	return s, nil
}
