// internal/app/features/workspaces/routes.go
package workspaces

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for /workspaces. The workspace-scoped
// sub-features (members, roles, projects, tasks) are passed in as routers
// and mounted under /{workspaceID} so each feature keeps its own routing
// while the path layout lives in one place.
func Routes(h *Handler, members, roles, projects, tasks chi.Router) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.HandleCreate)
	r.Get("/", h.ServeList)
	r.Post("/join/{inviteCode}", h.HandleJoin)

	r.Route("/{workspaceID}", func(wr chi.Router) {
		wr.Get("/", h.ServeView)
		wr.Patch("/", h.HandleUpdate)
		wr.Delete("/", h.HandleDelete)
		wr.Post("/invite/reset", h.HandleResetInvite)

		wr.Mount("/members", members)
		wr.Mount("/roles", roles)
		wr.Mount("/projects", projects)
		wr.Mount("/tasks", tasks)
	})

	return r
}
