// internal/app/features/tasks/crud.go
package tasks

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	taskstore "github.com/taskhubhq/taskhub/internal/app/store/tasks"
	"github.com/taskhubhq/taskhub/internal/app/system/authz"
	"github.com/taskhubhq/taskhub/internal/app/system/gates"
	"github.com/taskhubhq/taskhub/internal/app/system/inputval"
	"github.com/taskhubhq/taskhub/internal/app/system/sanitize"
	"github.com/taskhubhq/taskhub/internal/app/system/timeouts"
	"github.com/taskhubhq/taskhub/internal/app/system/webjson"
	"github.com/taskhubhq/taskhub/internal/domain/models"
)

// ServeView handles GET /workspaces/{workspaceID}/tasks/{taskID}, gated
// on tasks/read against the task's own fields.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireMember(w, r, h.Engine)
	if !res.OK {
		return
	}

	t, ok := h.loadTask(w, r, res)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	d, err := h.Engine.Authorize(ctx, res.Membership, models.ResourceTasks, authz.ActionRead, taskTarget(t), authz.Checks{Ownership: true, Assignment: true, Status: true})
	if err != nil {
		h.Log.Error("task view: authorize", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "authorization check failed")
		return
	}
	if !d.Allowed {
		gates.Deny(w, d)
		return
	}

	webjson.Write(w, http.StatusOK, t)
}

type updateRequest struct {
	Name        *string    `json:"name" validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Status      *string    `json:"status" validate:"omitempty,taskstatus"`
	AssignedID  *string    `json:"assigned_id"`
	DueDate     *time.Time `json:"due_date"`
}

// HandleUpdate handles PATCH /workspaces/{workspaceID}/tasks/{taskID}.
// Gated on tasks/update with ownership, assignment, and status checks
// opted in, evaluated against the stored document. A status change is
// additionally checked against the new status so a role limited to
// certain columns cannot move tasks out of them.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireMember(w, r, h.Engine)
	if !res.OK {
		return
	}

	var req updateRequest
	if !webjson.Decode(w, r, &req) {
		return
	}
	sanitize.TextPtr(req.Name)
	sanitize.TextPtr(req.Description)
	if msg := inputval.Check(req); msg != "" {
		webjson.Error(w, http.StatusBadRequest, msg)
		return
	}

	t, ok := h.loadTask(w, r, res)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	checks := authz.Checks{Ownership: true, Assignment: true, Status: true}
	d, err := h.Engine.Authorize(ctx, res.Membership, models.ResourceTasks, authz.ActionUpdate, taskTarget(t), checks)
	if err != nil {
		h.Log.Error("task update: authorize", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "authorization check failed")
		return
	}
	if !d.Allowed {
		gates.Deny(w, d)
		return
	}

	var update taskstore.Update
	if req.Name != nil {
		update.Name = req.Name
	}
	if req.Description != nil {
		update.Description = req.Description
	}
	if req.DueDate != nil {
		update.DueDate = req.DueDate
	}
	if req.AssignedID != nil {
		if *req.AssignedID == "" {
			update.AssignedID = &primitive.NilObjectID
		} else {
			id, err := primitive.ObjectIDFromHex(*req.AssignedID)
			if err != nil {
				webjson.Error(w, http.StatusBadRequest, "invalid assignee id")
				return
			}
			update.AssignedID = &id
		}
	}
	if req.Status != nil {
		newStatus := models.TaskStatus(*req.Status)
		if newStatus != t.Status {
			moved := t
			moved.Status = newStatus
			d, err := h.Engine.Authorize(ctx, res.Membership, models.ResourceTasks, authz.ActionUpdate, taskTarget(moved), checks)
			if err != nil {
				h.Log.Error("task update: authorize status change", zap.Error(err))
				webjson.Error(w, http.StatusInternalServerError, "authorization check failed")
				return
			}
			if !d.Allowed {
				gates.Deny(w, d)
				return
			}
		}
		update.Status = &newStatus
	}

	if err := h.Tasks.Apply(ctx, t.ID, update); err != nil {
		if errors.Is(err, taskstore.ErrNotFound) {
			webjson.Error(w, http.StatusNotFound, "task not found")
			return
		}
		h.Log.Error("task update", zap.Error(err), zap.String("task_id", t.ID.Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to update task")
		return
	}

	updated, err := h.Tasks.GetByID(ctx, t.ID)
	if err != nil {
		h.Log.Error("task update: reload", zap.Error(err), zap.String("task_id", t.ID.Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to load task")
		return
	}
	webjson.Write(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /workspaces/{workspaceID}/tasks/{taskID},
// gated on tasks/delete with the ownership check opted in.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireMember(w, r, h.Engine)
	if !res.OK {
		return
	}

	t, ok := h.loadTask(w, r, res)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	d, err := h.Engine.Authorize(ctx, res.Membership, models.ResourceTasks, authz.ActionDelete, taskTarget(t), authz.Checks{Ownership: true})
	if err != nil {
		h.Log.Error("task delete: authorize", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "authorization check failed")
		return
	}
	if !d.Allowed {
		gates.Deny(w, d)
		return
	}

	if _, err := h.Tasks.Delete(ctx, t.ID); err != nil {
		h.Log.Error("task delete", zap.Error(err), zap.String("task_id", t.ID.Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// taskTarget maps a task document to the engine's condition view.
func taskTarget(t models.Task) *authz.Target {
	return &authz.Target{
		OwnerID:    t.UserID,
		AssignedID: t.AssignedID,
		Status:     t.Status,
	}
}

// loadTask fetches the {taskID} path resource and verifies it belongs to
// the resolved workspace.
func (h *Handler) loadTask(w http.ResponseWriter, r *http.Request, res gates.Result) (models.Task, bool) {
	taskID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "taskID"))
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid task id")
		return models.Task{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, err := h.Tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, taskstore.ErrNotFound) {
			webjson.Error(w, http.StatusNotFound, "task not found")
			return models.Task{}, false
		}
		h.Log.Error("task load", zap.Error(err), zap.String("task_id", taskID.Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to load task")
		return models.Task{}, false
	}
	if t.WorkspaceID != res.WorkspaceID() {
		webjson.Error(w, http.StatusNotFound, "task not found")
		return models.Task{}, false
	}
	return t, true
}
