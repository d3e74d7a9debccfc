package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/JamesPrial/atlantis-todos/internal/command"
	"github.com/JamesPrial/atlantis-todos/internal/todo"
)

// Handlers implements the MCP tool handlers on top of a task store.
type Handlers struct {
	store *todo.Store
}

// NewHandlers creates Handlers for store.
func NewHandlers(store *todo.Store) *Handlers {
	return &Handlers{store: store}
}

// HandleAddTask creates a task.
// Parameters:
//   - text (string, required): task text
func (h *Handlers) HandleAddTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: text"), nil
	}
	return h.dispatch(ctx, command.Request{Op: command.OpAdd, Text: text}), nil
}

// HandleToggleTask flips a task's completed flag.
// Parameters:
//   - id (string, required): task id
func (h *Handlers) HandleToggleTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: id"), nil
	}
	return h.dispatch(ctx, command.Request{Op: command.OpToggle, ID: id}), nil
}

// HandleRemoveTask deletes a task.
// Parameters:
//   - id (string, required): task id
func (h *Handlers) HandleRemoveTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: id"), nil
	}
	return h.dispatch(ctx, command.Request{Op: command.OpRemove, ID: id}), nil
}

// HandleEditTask replaces a task's text.
// Parameters:
//   - id (string, required): task id
//   - text (string, required): new text
func (h *Handlers) HandleEditTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: id"), nil
	}
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: text"), nil
	}
	return h.dispatch(ctx, command.Request{Op: command.OpEdit, ID: id, Text: text}), nil
}

// HandleClearCompleted deletes all completed tasks.
func (h *Handlers) HandleClearCompleted(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.dispatch(ctx, command.Request{Op: command.OpClearCompleted}), nil
}

// HandleListTasks lists tasks.
// Parameters:
//   - filter (string, optional): "all" (default), "active" or "completed"
func (h *Handlers) HandleListTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := request.GetString("filter", string(todo.FilterAll))
	return h.dispatch(ctx, command.Request{Op: command.OpList, Filter: filter}), nil
}

// HandleTaskStats returns task counts.
func (h *Handlers) HandleTaskStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.dispatch(ctx, command.Request{Op: command.OpStats}), nil
}

// dispatch executes req and renders the response as JSON text.
// Failed responses become tool error results.
func (h *Handlers) dispatch(ctx context.Context, req command.Request) *mcp.CallToolResult {
	resp := command.Execute(ctx, h.store, req)

	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode response: %v", err))
	}

	if !resp.OK {
		return mcp.NewToolResultError(string(data))
	}
	return mcp.NewToolResultText(string(data))
}
