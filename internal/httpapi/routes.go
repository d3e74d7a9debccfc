package httpapi

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// NewRouter sets up all routes for the API.
//
// When logRequests is set, every request is logged with its duration.
func NewRouter(h *Handler, logRequests bool) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/tasks", h.ListTasks).Methods(http.MethodGet)
	router.HandleFunc("/tasks", h.CreateTask).Methods(http.MethodPost)
	router.HandleFunc("/tasks/clear-completed", h.ClearCompleted).Methods(http.MethodPost)
	router.HandleFunc("/tasks/{taskID}/toggle", h.ToggleTask).Methods(http.MethodPost)
	router.HandleFunc("/tasks/{taskID}", h.UpdateTask).Methods(http.MethodPatch)
	router.HandleFunc("/tasks/{taskID}", h.DeleteTask).Methods(http.MethodDelete)
	router.HandleFunc("/stats", h.GetStats).Methods(http.MethodGet)
	router.HandleFunc("/events", h.Events).Methods(http.MethodGet)

	if logRequests {
		router.Use(loggingMiddleware(h.logger))
	}

	return router
}

func loggingMiddleware(logger *log.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Printf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start).Round(time.Microsecond))
		})
	}
}
