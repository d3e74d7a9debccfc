package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/JamesPrial/atlantis-todos/internal/storage"
	"github.com/JamesPrial/atlantis-todos/internal/todo"
)

// Response reports the outcome of one Request.
type Response struct {
	Op string `json:"op"`

	// OK is false only for invalid requests and storage failures.
	OK bool `json:"ok"`

	// Changed is false when the operation was a no-op.
	Changed bool `json:"changed"`

	Task    *storage.Task  `json:"task,omitempty"`
	Tasks   []storage.Task `json:"tasks,omitzero"`
	Stats   *todo.Stats    `json:"stats,omitempty"`
	Removed int            `json:"removed,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Execute applies req to store.
//
// Execute never panics on bad input; problems are reported in
// Response.Error with OK set to false.
func Execute(ctx context.Context, store *todo.Store, req Request) Response {
	resp := Response{Op: req.Op}

	if err := req.Validate(); err != nil {
		resp.Error = err.Error()
		return resp
	}

	var err error
	switch req.Op {
	case OpAdd:
		resp.Task, err = store.Add(ctx, req.Text)
		resp.Changed = resp.Task != nil

	case OpToggle:
		resp.Task, err = store.Toggle(ctx, req.ID)
		resp.Changed = resp.Task != nil

	case OpEdit:
		resp.Task, err = store.Edit(ctx, req.ID, req.Text)
		resp.Changed = resp.Task != nil

	case OpRemove:
		resp.Changed, err = store.Remove(ctx, req.ID)

	case OpClearCompleted:
		resp.Removed, err = store.ClearCompleted(ctx)
		resp.Changed = resp.Removed > 0

	case OpList:
		filter, parseErr := todo.ParseFilter(req.Filter)
		if parseErr != nil {
			resp.Error = parseErr.Error()
			return resp
		}
		if err = store.Initialize(ctx); err != nil {
			break
		}
		resp.Tasks = store.Filtered(filter)
		stats := store.Stats()
		resp.Stats = &stats

	case OpStats:
		if err = store.Initialize(ctx); err != nil {
			break
		}
		stats := store.Stats()
		resp.Stats = &stats
	}

	if err != nil {
		resp.Error = err.Error()
		return resp
	}

	resp.OK = true
	return resp
}

// Run reads requests from r until EOF, executes each against store and
// writes one JSON response per line to w.
//
// Invalid requests produce an error response and processing continues.
// Malformed JSON stops the stream and is returned.
func Run(ctx context.Context, store *todo.Store, r io.Reader, w io.Writer, opts ...DecoderOption) error {
	dec := NewDecoder(r, opts...)
	enc := json.NewEncoder(w)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		req, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := enc.Encode(Execute(ctx, store, req)); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}
}
