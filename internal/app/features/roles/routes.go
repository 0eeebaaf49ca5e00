// internal/app/features/roles/routes.go
package roles

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the router mounted at /workspaces/{workspaceID}/roles.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.HandleCreate)
	r.Get("/", h.ServeList)
	r.Get("/{roleID}", h.ServeView)
	r.Patch("/{roleID}", h.HandleUpdate)
	r.Delete("/{roleID}", h.HandleDelete)
	r.Post("/{roleID}/assign", h.HandleAssign)

	return r
}
