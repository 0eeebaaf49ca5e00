// internal/app/features/projects/crud.go
package projects

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	projectstore "github.com/taskhubhq/taskhub/internal/app/store/projects"
	"github.com/taskhubhq/taskhub/internal/app/system/authz"
	"github.com/taskhubhq/taskhub/internal/app/system/gates"
	"github.com/taskhubhq/taskhub/internal/app/system/inputval"
	"github.com/taskhubhq/taskhub/internal/app/system/sanitize"
	"github.com/taskhubhq/taskhub/internal/app/system/timeouts"
	"github.com/taskhubhq/taskhub/internal/app/system/webjson"
	"github.com/taskhubhq/taskhub/internal/domain/models"
)

type projectPayload struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=2000"`
}

func (p *projectPayload) sanitize() {
	p.Name = sanitize.Text(p.Name)
	p.Description = sanitize.Text(p.Description)
}

// HandleCreate handles POST /workspaces/{workspaceID}/projects, gated on
// projects/create. Create has no target document, so no conditions apply.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireMember(w, r, h.Engine)
	if !res.OK {
		return
	}

	var req projectPayload
	if !webjson.Decode(w, r, &req) {
		return
	}
	req.sanitize()
	if msg := inputval.Check(req); msg != "" {
		webjson.Error(w, http.StatusBadRequest, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	d, err := h.Engine.Authorize(ctx, res.Membership, models.ResourceProjects, authz.ActionCreate, nil, authz.Checks{})
	if err != nil {
		h.Log.Error("project create: authorize", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "authorization check failed")
		return
	}
	if !d.Allowed {
		gates.Deny(w, d)
		return
	}

	p, err := h.Projects.Create(ctx, models.Project{
		WorkspaceID: res.WorkspaceID(),
		Name:        req.Name,
		Description: req.Description,
		UserID:      res.Principal.ID,
	})
	if err != nil {
		h.Log.Error("project create", zap.Error(err), zap.String("workspace_id", res.WorkspaceID().Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to create project")
		return
	}

	webjson.Write(w, http.StatusCreated, p)
}

// ServeList handles GET /workspaces/{workspaceID}/projects. Visibility
// comes from the derived permission filter, not per-row checks.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireMember(w, r, h.Engine)
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	f, d, err := h.Engine.ListFilter(ctx, res.Membership, models.ResourceProjects)
	if err != nil {
		h.Log.Error("project list: filter", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "authorization check failed")
		return
	}
	if !d.Allowed {
		gates.Deny(w, d)
		return
	}

	list, err := h.Projects.ListByWorkspace(ctx, res.WorkspaceID(), f)
	if err != nil {
		h.Log.Error("project list", zap.Error(err), zap.String("workspace_id", res.WorkspaceID().Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to list projects")
		return
	}
	if list == nil {
		list = []models.Project{}
	}
	webjson.List(w, http.StatusOK, list)
}

// ServeView handles GET /workspaces/{workspaceID}/projects/{projectID},
// gated on projects/read with no conditions opted in (single reads are
// not ownership-scoped; only listings are).
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireMember(w, r, h.Engine)
	if !res.OK {
		return
	}

	p, ok := h.loadProject(w, r, res)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	d, err := h.Engine.Authorize(ctx, res.Membership, models.ResourceProjects, authz.ActionRead, nil, authz.Checks{})
	if err != nil {
		h.Log.Error("project view: authorize", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "authorization check failed")
		return
	}
	if !d.Allowed {
		gates.Deny(w, d)
		return
	}

	webjson.Write(w, http.StatusOK, p)
}

// HandleUpdate handles PATCH /workspaces/{workspaceID}/projects/{projectID},
// gated on projects/update with the ownership check opted in.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireMember(w, r, h.Engine)
	if !res.OK {
		return
	}

	var req projectPayload
	if !webjson.Decode(w, r, &req) {
		return
	}
	req.sanitize()
	if msg := inputval.Check(req); msg != "" {
		webjson.Error(w, http.StatusBadRequest, msg)
		return
	}

	p, ok := h.loadProject(w, r, res)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	target := &authz.Target{OwnerID: p.UserID}
	d, err := h.Engine.Authorize(ctx, res.Membership, models.ResourceProjects, authz.ActionUpdate, target, authz.Checks{Ownership: true})
	if err != nil {
		h.Log.Error("project update: authorize", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "authorization check failed")
		return
	}
	if !d.Allowed {
		gates.Deny(w, d)
		return
	}

	if err := h.Projects.UpdateInfo(ctx, p.ID, req.Name, req.Description); err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			webjson.Error(w, http.StatusNotFound, "project not found")
			return
		}
		h.Log.Error("project update", zap.Error(err), zap.String("project_id", p.ID.Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to update project")
		return
	}

	updated, err := h.Projects.GetByID(ctx, p.ID)
	if err != nil {
		h.Log.Error("project update: reload", zap.Error(err), zap.String("project_id", p.ID.Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to load project")
		return
	}
	webjson.Write(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /workspaces/{workspaceID}/projects/{projectID},
// gated on projects/delete with the ownership check opted in. Tasks under
// the project are removed with it.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireMember(w, r, h.Engine)
	if !res.OK {
		return
	}

	p, ok := h.loadProject(w, r, res)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	target := &authz.Target{OwnerID: p.UserID}
	d, err := h.Engine.Authorize(ctx, res.Membership, models.ResourceProjects, authz.ActionDelete, target, authz.Checks{Ownership: true})
	if err != nil {
		h.Log.Error("project delete: authorize", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "authorization check failed")
		return
	}
	if !d.Allowed {
		gates.Deny(w, d)
		return
	}

	if _, err := h.Tasks.DeleteByProject(ctx, p.ID); err != nil {
		h.Log.Error("project delete: tasks", zap.Error(err), zap.String("project_id", p.ID.Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to delete project")
		return
	}
	if _, err := h.Projects.Delete(ctx, p.ID); err != nil {
		h.Log.Error("project delete", zap.Error(err), zap.String("project_id", p.ID.Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to delete project")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// loadProject fetches the {projectID} path resource and verifies it
// belongs to the resolved workspace. Writes the error response and
// returns ok=false on any failure.
func (h *Handler) loadProject(w http.ResponseWriter, r *http.Request, res gates.Result) (models.Project, bool) {
	projectID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "projectID"))
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid project id")
		return models.Project{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			webjson.Error(w, http.StatusNotFound, "project not found")
			return models.Project{}, false
		}
		h.Log.Error("project load", zap.Error(err), zap.String("project_id", projectID.Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to load project")
		return models.Project{}, false
	}
	if p.WorkspaceID != res.WorkspaceID() {
		webjson.Error(w, http.StatusNotFound, "project not found")
		return models.Project{}, false
	}
	return p, true
}
