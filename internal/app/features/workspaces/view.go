// internal/app/features/workspaces/view.go
package workspaces

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	workspacestore "github.com/taskhubhq/taskhub/internal/app/store/workspaces"
	"github.com/taskhubhq/taskhub/internal/app/system/gates"
	"github.com/taskhubhq/taskhub/internal/app/system/timeouts"
	"github.com/taskhubhq/taskhub/internal/app/system/webjson"
)

// ServeView handles GET /workspaces/{workspaceID}. Any member may read
// the workspace document; the invite code is stripped for non-admins.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireMember(w, r, h.Engine)
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ws, err := h.Workspaces.GetByID(ctx, res.WorkspaceID())
	if err != nil {
		if errors.Is(err, workspacestore.ErrNotFound) {
			webjson.Error(w, http.StatusNotFound, "workspace not found")
			return
		}
		h.Log.Error("workspace view", zap.Error(err), zap.String("workspace_id", res.WorkspaceID().Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to load workspace")
		return
	}

	if !res.Membership.IsAdmin() {
		ws.InviteCode = ""
	}

	webjson.Write(w, http.StatusOK, ws)
}
