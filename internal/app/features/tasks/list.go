// internal/app/features/tasks/list.go
package tasks

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	taskstore "github.com/taskhubhq/taskhub/internal/app/store/tasks"
	"github.com/taskhubhq/taskhub/internal/app/system/gates"
	"github.com/taskhubhq/taskhub/internal/app/system/timeouts"
	"github.com/taskhubhq/taskhub/internal/app/system/webjson"
	"github.com/taskhubhq/taskhub/internal/domain/models"
)

// ServeList handles GET /workspaces/{workspaceID}/tasks. The permission
// filter scopes visibility; query parameters narrow further within it:
//
//	?project=<id>&status=<status>&assignee=<id>&search=<substring>
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireMember(w, r, h.Engine)
	if !res.OK {
		return
	}

	opts, ok := parseListOptions(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	f, d, err := h.Engine.ListFilter(ctx, res.Membership, models.ResourceTasks)
	if err != nil {
		h.Log.Error("task list: filter", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "authorization check failed")
		return
	}
	if !d.Allowed {
		gates.Deny(w, d)
		return
	}

	list, err := h.Tasks.ListByWorkspace(ctx, res.WorkspaceID(), f, opts)
	if err != nil {
		h.Log.Error("task list", zap.Error(err), zap.String("workspace_id", res.WorkspaceID().Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if list == nil {
		list = []models.Task{}
	}
	webjson.List(w, http.StatusOK, list)
}

// parseListOptions reads the narrowing query parameters. Malformed ids
// and unknown statuses are 400s, not silently ignored.
func parseListOptions(w http.ResponseWriter, r *http.Request) (taskstore.ListOptions, bool) {
	var opts taskstore.ListOptions
	q := r.URL.Query()

	if v := q.Get("project"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			webjson.Error(w, http.StatusBadRequest, "invalid project filter")
			return opts, false
		}
		opts.ProjectID = id
	}
	if v := q.Get("status"); v != "" {
		s := models.TaskStatus(v)
		if !models.IsValidTaskStatus(s) {
			webjson.Error(w, http.StatusBadRequest, "invalid status filter")
			return opts, false
		}
		opts.Status = s
	}
	if v := q.Get("assignee"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			webjson.Error(w, http.StatusBadRequest, "invalid assignee filter")
			return opts, false
		}
		opts.AssignedID = id
	}
	opts.Search = q.Get("search")

	return opts, true
}
