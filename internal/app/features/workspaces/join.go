// internal/app/features/workspaces/join.go
package workspaces

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	membershipstore "github.com/taskhubhq/taskhub/internal/app/store/memberships"
	workspacestore "github.com/taskhubhq/taskhub/internal/app/store/workspaces"
	"github.com/taskhubhq/taskhub/internal/app/system/gates"
	"github.com/taskhubhq/taskhub/internal/app/system/timeouts"
	"github.com/taskhubhq/taskhub/internal/app/system/webjson"
	"github.com/taskhubhq/taskhub/internal/domain/models"
)

// HandleJoin handles POST /workspaces/join/{inviteCode}. A valid code
// creates a member-role membership pre-assigned the workspace's system
// Member role, so new joiners can work with tasks immediately instead of
// starting with no permissions at all.
//
// An unknown code is a 404; joining twice is a 409 from the unique
// (workspace, user) index.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	p, ok := gates.RequirePrincipal(w, r)
	if !ok {
		return
	}

	code := chi.URLParam(r, "inviteCode")
	if code == "" {
		webjson.Error(w, http.StatusBadRequest, "invite code is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ws, err := h.Workspaces.GetByInviteCode(ctx, code)
	if err != nil {
		if errors.Is(err, workspacestore.ErrNotFound) {
			webjson.Error(w, http.StatusNotFound, "invalid invite code")
			return
		}
		h.Log.Error("workspace join: lookup", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "failed to join workspace")
		return
	}

	memberRole, err := h.Roles.GetSystemRole(ctx, ws.ID, models.SystemRoleMember)
	if err != nil {
		h.Log.Error("workspace join: member role lookup",
			zap.Error(err),
			zap.String("workspace_id", ws.ID.Hex()),
		)
		webjson.Error(w, http.StatusInternalServerError, "failed to join workspace")
		return
	}

	m, err := h.Memberships.Create(ctx, models.Membership{
		WorkspaceID: ws.ID,
		UserID:      p.ID,
		Role:        models.CoarseRoleMember,
		RoleID:      &memberRole.ID,
	})
	if err != nil {
		if errors.Is(err, membershipstore.ErrDuplicateMembership) {
			webjson.Error(w, http.StatusConflict, "already a member of this workspace")
			return
		}
		h.Log.Error("workspace join: create membership",
			zap.Error(err),
			zap.String("workspace_id", ws.ID.Hex()),
			zap.String("user_id", p.ID.Hex()),
		)
		webjson.Error(w, http.StatusInternalServerError, "failed to join workspace")
		return
	}

	h.Audit.MemberJoined(ctx, r, p.ID, ws.ID)
	webjson.Write(w, http.StatusCreated, m)
}
