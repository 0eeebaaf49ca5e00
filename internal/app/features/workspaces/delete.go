// internal/app/features/workspaces/delete.go
package workspaces

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	workspacestore "github.com/taskhubhq/taskhub/internal/app/store/workspaces"
	"github.com/taskhubhq/taskhub/internal/app/policy/workspacepolicy"
	"github.com/taskhubhq/taskhub/internal/app/system/gates"
	"github.com/taskhubhq/taskhub/internal/app/system/timeouts"
	"github.com/taskhubhq/taskhub/internal/app/system/webjson"
)

// HandleDelete handles DELETE /workspaces/{workspaceID}. Owner-only, and
// cascades through tasks, projects, roles, and memberships. The workspace
// document goes last so a partial failure leaves the workspace findable
// and the delete retryable.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireMember(w, r, h.Engine)
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	ws, err := h.Workspaces.GetByID(ctx, res.WorkspaceID())
	if err != nil {
		if errors.Is(err, workspacestore.ErrNotFound) {
			webjson.Error(w, http.StatusNotFound, "workspace not found")
			return
		}
		h.Log.Error("workspace delete: load", zap.Error(err), zap.String("workspace_id", res.WorkspaceID().Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to delete workspace")
		return
	}

	if !workspacepolicy.CanDeleteWorkspace(ws, res.Principal.ID) {
		webjson.Error(w, http.StatusForbidden, "only the workspace owner can delete it")
		return
	}

	wsID := ws.ID
	if _, err := h.Tasks.DeleteByWorkspace(ctx, wsID); err != nil {
		h.Log.Error("workspace delete: tasks", zap.Error(err), zap.String("workspace_id", wsID.Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to delete workspace")
		return
	}
	if _, err := h.Projects.DeleteByWorkspace(ctx, wsID); err != nil {
		h.Log.Error("workspace delete: projects", zap.Error(err), zap.String("workspace_id", wsID.Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to delete workspace")
		return
	}
	if _, err := h.Roles.DeleteByWorkspace(ctx, wsID); err != nil {
		h.Log.Error("workspace delete: roles", zap.Error(err), zap.String("workspace_id", wsID.Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to delete workspace")
		return
	}
	if _, err := h.Memberships.DeleteByWorkspace(ctx, wsID); err != nil {
		h.Log.Error("workspace delete: memberships", zap.Error(err), zap.String("workspace_id", wsID.Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to delete workspace")
		return
	}
	if _, err := h.Workspaces.Delete(ctx, wsID); err != nil {
		h.Log.Error("workspace delete: workspace", zap.Error(err), zap.String("workspace_id", wsID.Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to delete workspace")
		return
	}

	h.Audit.WorkspaceDeleted(ctx, r, res.Principal.ID, wsID, ws.Name)
	w.WriteHeader(http.StatusNoContent)
}
