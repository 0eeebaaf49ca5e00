// internal/app/features/members/list.go
package members

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/taskhubhq/taskhub/internal/app/system/authz"
	"github.com/taskhubhq/taskhub/internal/app/system/gates"
	"github.com/taskhubhq/taskhub/internal/app/system/timeouts"
	"github.com/taskhubhq/taskhub/internal/app/system/webjson"
	"github.com/taskhubhq/taskhub/internal/domain/models"
)

// memberEntry is a membership with the member's user fields joined in.
type memberEntry struct {
	ID       primitive.ObjectID  `json:"id"`
	UserID   primitive.ObjectID  `json:"user_id"`
	Username string              `json:"username"`
	Email    string              `json:"email"`
	Role     string              `json:"role"`
	RoleID   *primitive.ObjectID `json:"role_id,omitempty"`
	JoinedAt time.Time           `json:"joined_at"`
}

// ServeList handles GET /workspaces/{workspaceID}/members, gated through
// the engine on members/read.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireMember(w, r, h.Engine)
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	d, err := h.Engine.Authorize(ctx, res.Membership, models.ResourceMembers, authz.ActionRead, nil, authz.Checks{})
	if err != nil {
		h.Log.Error("member list: authorize", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "authorization check failed")
		return
	}
	if !d.Allowed {
		gates.Deny(w, d)
		return
	}

	mships, err := h.Memberships.ListByWorkspace(ctx, res.WorkspaceID())
	if err != nil {
		h.Log.Error("member list: memberships", zap.Error(err), zap.String("workspace_id", res.WorkspaceID().Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to list members")
		return
	}

	ids := make([]primitive.ObjectID, 0, len(mships))
	for _, m := range mships {
		ids = append(ids, m.UserID)
	}
	usrs, err := h.Users.ListByIDs(ctx, ids)
	if err != nil {
		h.Log.Error("member list: users", zap.Error(err), zap.String("workspace_id", res.WorkspaceID().Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to list members")
		return
	}
	byID := make(map[primitive.ObjectID]models.User, len(usrs))
	for _, u := range usrs {
		byID[u.ID] = u
	}

	entries := make([]memberEntry, 0, len(mships))
	for _, m := range mships {
		u := byID[m.UserID]
		entries = append(entries, memberEntry{
			ID:       m.ID,
			UserID:   m.UserID,
			Username: u.Username,
			Email:    u.Email,
			Role:     m.Role,
			RoleID:   m.RoleID,
			JoinedAt: m.CreatedAt,
		})
	}

	webjson.List(w, http.StatusOK, entries)
}
