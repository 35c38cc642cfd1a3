package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/tickoff/internal/host"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(loop *host.Loop, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(loop)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Task list.
	r.Get("/tasks", h.ListTasks)
	r.Post("/tasks", h.AddTask)
	r.Post("/tasks/{index}/check", h.CheckTask)
	r.Post("/tasks/{index}/move", h.MoveTask)
	r.Delete("/tasks/{index}", h.DeleteTask)

	// Drag gesture.
	r.Get("/drag", h.DragState)
	r.Post("/drag/end", h.DragEnd)
	r.Post("/drag/{event}", h.DragEvent)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
