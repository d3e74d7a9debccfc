package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/JamesPrial/atlantis-todos/internal/todo"
)

// eventBuffer is how many snapshots a slow client may lag behind before
// intermediate ones are dropped. The latest state always arrives eventually.
const eventBuffer = 16

// Events handles GET /events as a server-sent events stream.
//
// The current snapshot is sent first, then one "snapshot" event per store
// change until the client disconnects.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	updates := make(chan todo.Snapshot, eventBuffer)
	unsubscribe := h.store.Subscribe(func(snap todo.Snapshot) {
		select {
		case updates <- snap:
		default:
			// Drop rather than block the mutating goroutine
		}
	})
	defer unsubscribe()

	if err := h.store.Initialize(r.Context()); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	current := h.store.Snapshot()
	if err := writeEvent(w, current); err != nil {
		return
	}
	flusher.Flush()
	lastVersion := current.Version

	for {
		select {
		case <-r.Context().Done():
			return
		case snap := <-updates:
			if snap.Version <= lastVersion {
				continue
			}
			// A dropped update would leave the client behind; send the newest state
			snap = h.store.Snapshot()
			if err := writeEvent(w, snap); err != nil {
				h.logger.Printf("Event stream closed: %v", err)
				return
			}
			flusher.Flush()
			lastVersion = snap.Version
		}
	}
}

func writeEvent(w http.ResponseWriter, snap todo.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: snapshot\ndata: %s\n\n", snap.Version, data)
	return err
}
