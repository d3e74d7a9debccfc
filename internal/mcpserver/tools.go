// Package mcpserver exposes the task store as Model Context Protocol tools.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/JamesPrial/atlantis-todos/internal/todo"
)

// addTaskTool returns a tool definition for creating a task.
func addTaskTool() mcp.Tool {
	return mcp.NewTool("add_task",
		mcp.WithDescription("Add a task to the top of the list. Blank text is ignored."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Task text; leading and trailing whitespace is trimmed")),
	)
}

// toggleTaskTool returns a tool definition for flipping a task's completed flag.
func toggleTaskTool() mcp.Tool {
	return mcp.NewTool("toggle_task",
		mcp.WithDescription("Mark a task completed, or active again if it already was."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("ID of the task to toggle")),
	)
}

// removeTaskTool returns a tool definition for deleting a task.
func removeTaskTool() mcp.Tool {
	return mcp.NewTool("remove_task",
		mcp.WithDescription("Delete a task from the list."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("ID of the task to delete")),
	)
}

// editTaskTool returns a tool definition for changing a task's text.
func editTaskTool() mcp.Tool {
	return mcp.NewTool("edit_task",
		mcp.WithDescription("Replace the text of a task. Blank or unchanged text is ignored."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("ID of the task to edit")),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("New task text")),
	)
}

// clearCompletedTool returns a tool definition for removing all completed tasks.
func clearCompletedTool() mcp.Tool {
	return mcp.NewTool("clear_completed",
		mcp.WithDescription("Delete every completed task in one operation."),
	)
}

// listTasksTool returns a tool definition for listing tasks.
func listTasksTool() mcp.Tool {
	return mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks newest first, optionally filtered, together with counts."),
		mcp.WithString("filter",
			mcp.Enum(filterNames()...),
			mcp.Description("Which tasks to list (defaults to 'all')")),
	)
}

// taskStatsTool returns a tool definition for task counts.
func taskStatsTool() mcp.Tool {
	return mcp.NewTool("task_stats",
		mcp.WithDescription("Count total, active and completed tasks."),
	)
}

func filterNames() []string {
	names := make([]string, len(todo.Filters))
	for i, f := range todo.Filters {
		names[i] = string(f)
	}
	return names
}
