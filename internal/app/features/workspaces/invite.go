// internal/app/features/workspaces/invite.go
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

type inviteResponse struct {
	InviteCode string `json:"invite_code"`
}

// HandleResetInvite handles POST /workspaces/{workspaceID}/invite/reset.
// Admin-only; the old code stops working immediately.
func (h *Handler) HandleResetInvite(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireWorkspaceAdmin(w, r, h.Engine)
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	code, err := h.Workspaces.ResetInviteCode(ctx, res.WorkspaceID())
	if err != nil {
		if errors.Is(err, workspacestore.ErrNotFound) {
			webjson.Error(w, http.StatusNotFound, "workspace not found")
			return
		}
		h.Log.Error("invite reset", zap.Error(err), zap.String("workspace_id", res.WorkspaceID().Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to reset invite code")
		return
	}

	h.Audit.InviteCodeReset(ctx, r, res.Principal.ID, res.WorkspaceID())
	webjson.Write(w, http.StatusOK, inviteResponse{InviteCode: code})
}
