// internal/app/features/workspaces/list.go
package workspaces

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/taskhubhq/taskhub/internal/app/system/gates"
	"github.com/taskhubhq/taskhub/internal/app/system/timeouts"
	"github.com/taskhubhq/taskhub/internal/app/system/webjson"
	"github.com/taskhubhq/taskhub/internal/domain/models"
)

// ServeList handles GET /workspaces: the workspaces the caller belongs
// to. Membership, not ownership, is what grants visibility.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p, ok := gates.RequirePrincipal(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	mships, err := h.Memberships.ListByUser(ctx, p.ID)
	if err != nil {
		h.Log.Error("workspace list: memberships", zap.Error(err), zap.String("user_id", p.ID.Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to list workspaces")
		return
	}

	ids := make([]primitive.ObjectID, 0, len(mships))
	for _, m := range mships {
		ids = append(ids, m.WorkspaceID)
	}

	wss, err := h.Workspaces.ListByIDs(ctx, ids)
	if err != nil {
		h.Log.Error("workspace list: workspaces", zap.Error(err), zap.String("user_id", p.ID.Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to list workspaces")
		return
	}
	if wss == nil {
		wss = []models.Workspace{}
	}

	// Invite codes are only exposed on the single-workspace view, and only
	// to admins.
	for i := range wss {
		wss[i].InviteCode = ""
	}

	webjson.List(w, http.StatusOK, wss)
}
