// internal/app/features/tasks/routes.go
package tasks

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the router mounted at /workspaces/{workspaceID}/tasks.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.HandleCreate)
	r.Get("/", h.ServeList)
	r.Get("/{taskID}", h.ServeView)
	r.Patch("/{taskID}", h.HandleUpdate)
	r.Delete("/{taskID}", h.HandleDelete)

	return r
}
