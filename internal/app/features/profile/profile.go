// internal/app/features/profile/profile.go

// Package profile serves the authenticated user's own account view: their
// identity fields and the workspaces they belong to, with the coarse role
// carried per membership.
package profile

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	memberships "github.com/taskhubhq/taskhub/internal/app/store/memberships"
	workspaces "github.com/taskhubhq/taskhub/internal/app/store/workspaces"
	"github.com/taskhubhq/taskhub/internal/app/system/gates"
	"github.com/taskhubhq/taskhub/internal/app/system/timeouts"
	"github.com/taskhubhq/taskhub/internal/app/system/webjson"
)

// Handler holds dependencies for the profile feature.
type Handler struct {
	Memberships *memberships.Store
	Workspaces  *workspaces.Store
	Log         *zap.Logger
}

// NewHandler constructs a profile Handler.
func NewHandler(ms *memberships.Store, ws *workspaces.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Memberships: ms,
		Workspaces:  ws,
		Log:         logger,
	}
}

type workspaceEntry struct {
	ID   primitive.ObjectID `json:"id"`
	Name string             `json:"name"`
	Role string             `json:"role"`
}

type profileResponse struct {
	ID         primitive.ObjectID `json:"id"`
	Username   string             `json:"username"`
	Email      string             `json:"email"`
	Workspaces []workspaceEntry   `json:"workspaces"`
}

// Serve handles GET /profile.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	p, ok := gates.RequirePrincipal(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	mships, err := h.Memberships.ListByUser(ctx, p.ID)
	if err != nil {
		h.Log.Error("profile: list memberships", zap.Error(err), zap.String("user_id", p.ID.Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	ids := make([]primitive.ObjectID, 0, len(mships))
	roleByWS := make(map[primitive.ObjectID]string, len(mships))
	for _, m := range mships {
		ids = append(ids, m.WorkspaceID)
		roleByWS[m.WorkspaceID] = m.Role
	}

	wss, err := h.Workspaces.ListByIDs(ctx, ids)
	if err != nil {
		h.Log.Error("profile: list workspaces", zap.Error(err), zap.String("user_id", p.ID.Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	entries := make([]workspaceEntry, 0, len(wss))
	for _, ws := range wss {
		entries = append(entries, workspaceEntry{
			ID:   ws.ID,
			Name: ws.Name,
			Role: roleByWS[ws.ID],
		})
	}

	webjson.Write(w, http.StatusOK, profileResponse{
		ID:         p.ID,
		Username:   p.Username,
		Email:      p.Email,
		Workspaces: entries,
	})
}
