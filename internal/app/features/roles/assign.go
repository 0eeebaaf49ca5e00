// internal/app/features/roles/assign.go
package roles

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	membershipstore "github.com/taskhubhq/taskhub/internal/app/store/memberships"
	"github.com/taskhubhq/taskhub/internal/app/system/gates"
	"github.com/taskhubhq/taskhub/internal/app/system/inputval"
	"github.com/taskhubhq/taskhub/internal/app/system/timeouts"
	"github.com/taskhubhq/taskhub/internal/app/system/webjson"
)

type assignRequest struct {
	MemberID string `json:"member_id" validate:"required"`
}

// HandleAssign handles POST /workspaces/{workspaceID}/roles/{roleID}/assign.
// Admin-only. Overwrites the membership's role_id; the coarse role is
// untouched.
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireWorkspaceAdmin(w, r, h.Engine)
	if !res.OK {
		return
	}

	roleID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "roleID"))
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid role id")
		return
	}

	var req assignRequest
	if !webjson.Decode(w, r, &req) {
		return
	}
	if msg := inputval.Check(req); msg != "" {
		webjson.Error(w, http.StatusBadRequest, msg)
		return
	}
	memberID, err := primitive.ObjectIDFromHex(req.MemberID)
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid member id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if !h.roleInWorkspace(ctx, w, roleID, res.WorkspaceID()) {
		return
	}

	target, err := h.Memberships.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, membershipstore.ErrNotFound) {
			webjson.Error(w, http.StatusNotFound, "member not found")
			return
		}
		h.Log.Error("role assign: member", zap.Error(err), zap.String("member_id", memberID.Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to assign role")
		return
	}
	if target.WorkspaceID != res.WorkspaceID() {
		webjson.Error(w, http.StatusNotFound, "member not found")
		return
	}

	if err := h.Memberships.AssignRole(ctx, memberID, roleID); err != nil {
		h.Log.Error("role assign", zap.Error(err),
			zap.String("member_id", memberID.Hex()),
			zap.String("role_id", roleID.Hex()),
		)
		webjson.Error(w, http.StatusInternalServerError, "failed to assign role")
		return
	}

	h.Audit.RoleAssigned(ctx, r, res.Principal.ID, target.UserID, roleID, res.WorkspaceID())

	m, err := h.Memberships.GetByID(ctx, memberID)
	if err != nil {
		h.Log.Error("role assign: reload", zap.Error(err), zap.String("member_id", memberID.Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to load membership")
		return
	}
	webjson.Write(w, http.StatusOK, m)
}
