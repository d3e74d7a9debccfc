// Package httpapi serves the task store over HTTP as JSON, with a
// server-sent events stream of list snapshots.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/JamesPrial/atlantis-todos/internal/storage"
	"github.com/JamesPrial/atlantis-todos/internal/todo"
)

// maxBodyBytes caps request bodies; task payloads are tiny.
const maxBodyBytes = 64 << 10

// Handler handles HTTP requests for tasks.
type Handler struct {
	store  *todo.Store
	logger *log.Logger
}

// NewHandler creates a Handler. A nil logger discards output.
func NewHandler(store *todo.Store, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Handler{store: store, logger: logger}
}

type listResponse struct {
	Tasks []storage.Task `json:"tasks"`
	Stats todo.Stats     `json:"stats"`
}

type textRequest struct {
	Text string `json:"text"`
}

type clearResponse struct {
	Removed int `json:"removed"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ListTasks handles GET /tasks?filter=.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	filter, err := todo.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Initialize(r.Context()); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, listResponse{
		Tasks: h.store.Filtered(filter),
		Stats: h.store.Stats(),
	})
}

// CreateTask handles POST /tasks.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var body textRequest
	if !h.decode(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		h.writeError(w, http.StatusBadRequest, "text must not be empty")
		return
	}

	task, err := h.store.Add(r.Context(), body.Text)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusCreated, task)
}

// ToggleTask handles POST /tasks/{taskID}/toggle.
func (h *Handler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskID"]

	task, err := h.store.Toggle(r.Context(), taskID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if task == nil {
		h.writeError(w, http.StatusNotFound, "task not found")
		return
	}

	h.writeJSON(w, http.StatusOK, task)
}

// UpdateTask handles PATCH /tasks/{taskID}.
//
// Unchanged text is not an error: the current task is returned as-is.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskID"]

	var body textRequest
	if !h.decode(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		h.writeError(w, http.StatusBadRequest, "text must not be empty")
		return
	}

	task, err := h.store.Edit(r.Context(), taskID, body.Text)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if task == nil {
		current, ok := h.store.Get(taskID)
		if !ok {
			h.writeError(w, http.StatusNotFound, "task not found")
			return
		}
		task = &current
	}

	h.writeJSON(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/{taskID}.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskID"]

	removed, err := h.store.Remove(r.Context(), taskID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !removed {
		h.writeError(w, http.StatusNotFound, "task not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClearCompleted handles POST /tasks/clear-completed.
func (h *Handler) ClearCompleted(w http.ResponseWriter, r *http.Request) {
	removed, err := h.store.ClearCompleted(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, clearResponse{Removed: removed})
}

// GetStats handles GET /stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Initialize(r.Context()); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, h.store.Stats())
}

// decode reads a JSON body into v, writing a 400 response on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		h.writeError(w, http.StatusBadRequest, "invalid request payload")
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Printf("Failed to write response: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorResponse{Error: msg})
}
