// internal/app/features/projects/routes.go
package projects

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the router mounted at /workspaces/{workspaceID}/projects.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.HandleCreate)
	r.Get("/", h.ServeList)
	r.Get("/{projectID}", h.ServeView)
	r.Patch("/{projectID}", h.HandleUpdate)
	r.Delete("/{projectID}", h.HandleDelete)

	return r
}
