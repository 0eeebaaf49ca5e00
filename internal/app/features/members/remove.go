// internal/app/features/members/remove.go
package members

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/taskhubhq/taskhub/internal/app/policy/workspacepolicy"
	membershipstore "github.com/taskhubhq/taskhub/internal/app/store/memberships"
	workspacestore "github.com/taskhubhq/taskhub/internal/app/store/workspaces"
	"github.com/taskhubhq/taskhub/internal/app/system/gates"
	"github.com/taskhubhq/taskhub/internal/app/system/timeouts"
	"github.com/taskhubhq/taskhub/internal/app/system/webjson"
)

// HandleRemove handles DELETE /workspaces/{workspaceID}/members/{memberID}.
// Admins can remove anyone except the owner; a member can remove their own
// membership (leave). The removed user's documents (tasks they created or
// are assigned) stay put.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireMember(w, r, h.Engine)
	if !res.OK {
		return
	}

	memberID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "memberID"))
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid member id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	target, err := h.Memberships.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, membershipstore.ErrNotFound) {
			webjson.Error(w, http.StatusNotFound, "member not found")
			return
		}
		h.Log.Error("member remove: load", zap.Error(err), zap.String("member_id", memberID.Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to remove member")
		return
	}
	if target.WorkspaceID != res.WorkspaceID() {
		webjson.Error(w, http.StatusNotFound, "member not found")
		return
	}

	ws, err := h.Workspaces.GetByID(ctx, res.WorkspaceID())
	if err != nil {
		if errors.Is(err, workspacestore.ErrNotFound) {
			webjson.Error(w, http.StatusNotFound, "workspace not found")
			return
		}
		h.Log.Error("member remove: workspace", zap.Error(err), zap.String("workspace_id", res.WorkspaceID().Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to remove member")
		return
	}

	if !workspacepolicy.CanRemoveMember(ws, res.Membership, target) {
		webjson.Error(w, http.StatusForbidden, "cannot remove this member")
		return
	}

	if _, err := h.Memberships.Remove(ctx, memberID); err != nil {
		h.Log.Error("member remove", zap.Error(err), zap.String("member_id", memberID.Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to remove member")
		return
	}

	h.Audit.MemberRemoved(ctx, r, res.Principal.ID, target.UserID, res.WorkspaceID())
	w.WriteHeader(http.StatusNoContent)
}
