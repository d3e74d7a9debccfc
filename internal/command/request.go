// Package command decodes task operations from a JSON envelope and applies
// them to a todo.Store.
//
// It is the shared dispatch path for the line-oriented "apply" command and
// the MCP tool server.
package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
)

// Operation names accepted in Request.Op.
const (
	OpAdd            = "add"
	OpToggle         = "toggle"
	OpRemove         = "remove"
	OpEdit           = "edit"
	OpClearCompleted = "clear_completed"
	OpList           = "list"
	OpStats          = "stats"
)

// Request is one operation envelope.
//
// Example: {"op":"edit","id":"c0ffee...","text":"Polish the trident"}
type Request struct {
	// Op is the operation name, e.g. "add" or "clear_completed".
	Op string `json:"op"`

	// ID identifies the task for toggle, remove and edit.
	ID string `json:"id,omitempty"`

	// Text is the task text for add and edit.
	Text string `json:"text,omitempty"`

	// Filter selects the view for list: "all", "active" or "completed".
	Filter string `json:"filter,omitempty"`
}

// Validate checks that the fields op requires are present.
//
// Blank text is not a validation failure: add and edit treat it as a no-op.
func (r Request) Validate() error {
	switch r.Op {
	case OpAdd, OpClearCompleted, OpList, OpStats:
		return nil
	case OpToggle, OpRemove, OpEdit:
		if strings.TrimSpace(r.ID) == "" {
			return fmt.Errorf("%s requires an id", r.Op)
		}
		return nil
	case "":
		return errors.New("missing op")
	default:
		return fmt.Errorf("unknown op: %q", r.Op)
	}
}

// Decoder reads a stream of Request values, one JSON object after another.
type Decoder struct {
	dec   *json.Decoder
	debug *log.Logger
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithDebugLogger echoes each decoded request to logger.
func WithDebugLogger(logger *log.Logger) DecoderOption {
	return func(d *Decoder) {
		d.debug = logger
	}
}

// NewDecoder creates a Decoder reading from r.
func NewDecoder(r io.Reader, opts ...DecoderOption) *Decoder {
	d := &Decoder{dec: json.NewDecoder(r)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Next decodes the next request.
//
// Returns io.EOF once the stream is exhausted, and a wrapped error if the
// JSON is malformed. The op name is normalized to lower case.
func (d *Decoder) Next() (Request, error) {
	var req Request
	if err := d.dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return Request{}, io.EOF
		}
		return Request{}, fmt.Errorf("failed to decode request: %w", err)
	}

	req.Op = strings.ToLower(strings.TrimSpace(req.Op))

	if d.debug != nil {
		d.debug.Printf("Decoded %s request (id=%q)", req.Op, req.ID)
	}

	return req, nil
}
