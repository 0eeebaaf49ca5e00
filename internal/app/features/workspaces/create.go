// internal/app/features/workspaces/create.go
package workspaces

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/taskhubhq/taskhub/internal/app/system/gates"
	"github.com/taskhubhq/taskhub/internal/app/system/inputval"
	"github.com/taskhubhq/taskhub/internal/app/system/sanitize"
	"github.com/taskhubhq/taskhub/internal/app/system/timeouts"
	"github.com/taskhubhq/taskhub/internal/app/system/webjson"
)

type createRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// HandleCreate handles POST /workspaces. The creator becomes the owner
// and an admin member, and the Admin/Member system roles are seeded, all
// in one provisioning step.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := gates.RequirePrincipal(w, r)
	if !ok {
		return
	}

	var req createRequest
	if !webjson.Decode(w, r, &req) {
		return
	}
	req.Name = sanitize.Text(req.Name)
	if msg := inputval.Check(req); msg != "" {
		webjson.Error(w, http.StatusBadRequest, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	ws, err := h.Provisioner.Workspace(ctx, req.Name, p.ID)
	if err != nil {
		h.Log.Error("workspace create failed",
			zap.Error(err),
			zap.String("user_id", p.ID.Hex()),
		)
		webjson.Error(w, http.StatusInternalServerError, "failed to create workspace")
		return
	}

	h.Audit.WorkspaceCreated(ctx, r, p.ID, ws.ID, ws.Name)
	webjson.Write(w, http.StatusCreated, ws)
}
