// internal/app/features/workspaces/update.go
package workspaces

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	workspacestore "github.com/taskhubhq/taskhub/internal/app/store/workspaces"
	"github.com/taskhubhq/taskhub/internal/app/system/authz"
	"github.com/taskhubhq/taskhub/internal/app/system/gates"
	"github.com/taskhubhq/taskhub/internal/app/system/inputval"
	"github.com/taskhubhq/taskhub/internal/app/system/sanitize"
	"github.com/taskhubhq/taskhub/internal/app/system/timeouts"
	"github.com/taskhubhq/taskhub/internal/app/system/webjson"
	"github.com/taskhubhq/taskhub/internal/domain/models"
)

type updateRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// HandleUpdate handles PATCH /workspaces/{workspaceID}: rename, gated
// through the engine on workspaces/update so fine-grained roles can grant
// it to non-admins.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireMember(w, r, h.Engine)
	if !res.OK {
		return
	}

	var req updateRequest
	if !webjson.Decode(w, r, &req) {
		return
	}
	req.Name = sanitize.Text(req.Name)
	if msg := inputval.Check(req); msg != "" {
		webjson.Error(w, http.StatusBadRequest, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	d, err := h.Engine.Authorize(ctx, res.Membership, models.ResourceWorkspaces, authz.ActionUpdate, nil, authz.Checks{})
	if err != nil {
		h.Log.Error("workspace update: authorize", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "authorization check failed")
		return
	}
	if !d.Allowed {
		gates.Deny(w, d)
		return
	}

	if err := h.Workspaces.UpdateName(ctx, res.WorkspaceID(), req.Name); err != nil {
		if errors.Is(err, workspacestore.ErrNotFound) {
			webjson.Error(w, http.StatusNotFound, "workspace not found")
			return
		}
		h.Log.Error("workspace update", zap.Error(err), zap.String("workspace_id", res.WorkspaceID().Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to update workspace")
		return
	}

	h.Audit.WorkspaceUpdated(ctx, r, res.Principal.ID, res.WorkspaceID(), req.Name)

	ws, err := h.Workspaces.GetByID(ctx, res.WorkspaceID())
	if err != nil {
		h.Log.Error("workspace update: reload", zap.Error(err), zap.String("workspace_id", res.WorkspaceID().Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to load workspace")
		return
	}
	if !res.Membership.IsAdmin() {
		ws.InviteCode = ""
	}
	webjson.Write(w, http.StatusOK, ws)
}
