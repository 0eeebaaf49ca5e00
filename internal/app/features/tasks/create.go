// internal/app/features/tasks/create.go
package tasks

import (
	"context"
	"errors"
	"net/http"
	"time"

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

type createRequest struct {
	ProjectID   string     `json:"project_id" validate:"required"`
	Name        string     `json:"name" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	Status      string     `json:"status" validate:"omitempty,taskstatus"`
	AssignedID  string     `json:"assigned_id"`
	DueDate     *time.Time `json:"due_date"`
}

// HandleCreate handles POST /workspaces/{workspaceID}/tasks, gated on
// tasks/create with the status check opted in: a role restricted to
// certain statuses can only create tasks in those statuses.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireMember(w, r, h.Engine)
	if !res.OK {
		return
	}

	var req createRequest
	if !webjson.Decode(w, r, &req) {
		return
	}
	req.Name = sanitize.Text(req.Name)
	req.Description = sanitize.Text(req.Description)
	if msg := inputval.Check(req); msg != "" {
		webjson.Error(w, http.StatusBadRequest, msg)
		return
	}

	projectID, err := primitive.ObjectIDFromHex(req.ProjectID)
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid project id")
		return
	}
	var assignedID primitive.ObjectID
	if req.AssignedID != "" {
		assignedID, err = primitive.ObjectIDFromHex(req.AssignedID)
		if err != nil {
			webjson.Error(w, http.StatusBadRequest, "invalid assignee id")
			return
		}
	}

	status := models.StatusBacklog
	if req.Status != "" {
		status = models.TaskStatus(req.Status)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	// The project anchors the task to the workspace; a project id from
	// another workspace is indistinguishable from a missing one.
	project, err := h.Projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			webjson.Error(w, http.StatusNotFound, "project not found")
			return
		}
		h.Log.Error("task create: project", zap.Error(err), zap.String("project_id", projectID.Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to create task")
		return
	}
	if project.WorkspaceID != res.WorkspaceID() {
		webjson.Error(w, http.StatusNotFound, "project not found")
		return
	}

	target := &authz.Target{Status: status}
	d, err := h.Engine.Authorize(ctx, res.Membership, models.ResourceTasks, authz.ActionCreate, target, authz.Checks{Status: true})
	if err != nil {
		h.Log.Error("task create: authorize", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "authorization check failed")
		return
	}
	if !d.Allowed {
		gates.Deny(w, d)
		return
	}

	t, err := h.Tasks.Create(ctx, models.Task{
		WorkspaceID: res.WorkspaceID(),
		ProjectID:   projectID,
		Name:        req.Name,
		Description: req.Description,
		Status:      status,
		UserID:      res.Principal.ID,
		AssignedID:  assignedID,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.Log.Error("task create", zap.Error(err), zap.String("workspace_id", res.WorkspaceID().Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	webjson.Write(w, http.StatusCreated, t)
}
