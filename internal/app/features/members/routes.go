// internal/app/features/members/routes.go
package members

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the router mounted at /workspaces/{workspaceID}/members.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Delete("/{memberID}", h.HandleRemove)

	return r
}
