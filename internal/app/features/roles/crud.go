// internal/app/features/roles/crud.go
package roles

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	rolestore "github.com/taskhubhq/taskhub/internal/app/store/roles"
	"github.com/taskhubhq/taskhub/internal/app/system/authz"
	"github.com/taskhubhq/taskhub/internal/app/system/gates"
	"github.com/taskhubhq/taskhub/internal/app/system/inputval"
	"github.com/taskhubhq/taskhub/internal/app/system/timeouts"
	"github.com/taskhubhq/taskhub/internal/app/system/webjson"
	"github.com/taskhubhq/taskhub/internal/domain/models"
)

// HandleCreate handles POST /workspaces/{workspaceID}/roles. Admin-only.
// A duplicate name (case-insensitive, per workspace) is a 409.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireWorkspaceAdmin(w, r, h.Engine)
	if !res.OK {
		return
	}

	var req rolePayload
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

	role, err := h.Roles.Create(ctx, models.Role{
		WorkspaceID: res.WorkspaceID(),
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.toPermissions(),
		CreatedBy:   res.Principal.ID,
	})
	if err != nil {
		if errors.Is(err, rolestore.ErrDuplicateRoleName) {
			webjson.Error(w, http.StatusConflict, "DuplicateRoleName")
			return
		}
		h.Log.Error("role create", zap.Error(err), zap.String("workspace_id", res.WorkspaceID().Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to create role")
		return
	}

	h.Audit.RoleCreated(ctx, r, res.Principal.ID, role.ID, res.WorkspaceID(), role.Name)
	webjson.Write(w, http.StatusCreated, role)
}

// ServeList handles GET /workspaces/{workspaceID}/roles. Any member may
// read role definitions; only mutations are admin-gated.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireMember(w, r, h.Engine)
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Roles.ListByWorkspace(ctx, res.WorkspaceID())
	if err != nil {
		h.Log.Error("role list", zap.Error(err), zap.String("workspace_id", res.WorkspaceID().Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to list roles")
		return
	}
	if list == nil {
		list = []models.Role{}
	}
	webjson.List(w, http.StatusOK, list)
}

// ServeView handles GET /workspaces/{workspaceID}/roles/{roleID}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireMember(w, r, h.Engine)
	if !res.OK {
		return
	}

	roleID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "roleID"))
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid role id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	role, err := h.Roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, authz.ErrRoleNotFound) {
			webjson.Error(w, http.StatusNotFound, "role not found")
			return
		}
		h.Log.Error("role view", zap.Error(err), zap.String("role_id", roleID.Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to load role")
		return
	}
	if role.WorkspaceID != res.WorkspaceID() {
		webjson.Error(w, http.StatusNotFound, "role not found")
		return
	}

	webjson.Write(w, http.StatusOK, role)
}

// HandleUpdate handles PATCH /workspaces/{workspaceID}/roles/{roleID}.
// Admin-only; system roles are refused with SystemRoleImmutable even for
// admins.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireWorkspaceAdmin(w, r, h.Engine)
	if !res.OK {
		return
	}

	roleID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "roleID"))
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid role id")
		return
	}

	var req rolePayload
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

	if !h.roleInWorkspace(ctx, w, roleID, res.WorkspaceID()) {
		return
	}

	err = h.Roles.Update(ctx, roleID, req.Name, req.Description, req.toPermissions())
	if err != nil {
		switch {
		case errors.Is(err, rolestore.ErrSystemRole):
			webjson.Error(w, http.StatusForbidden, "SystemRoleImmutable")
		case errors.Is(err, rolestore.ErrDuplicateRoleName):
			webjson.Error(w, http.StatusConflict, "DuplicateRoleName")
		case errors.Is(err, authz.ErrRoleNotFound):
			webjson.Error(w, http.StatusNotFound, "role not found")
		default:
			h.Log.Error("role update", zap.Error(err), zap.String("role_id", roleID.Hex()))
			webjson.Error(w, http.StatusInternalServerError, "failed to update role")
		}
		return
	}

	h.Audit.RoleUpdated(ctx, r, res.Principal.ID, roleID, res.WorkspaceID(), req.Name)

	role, err := h.Roles.GetByID(ctx, roleID)
	if err != nil {
		h.Log.Error("role update: reload", zap.Error(err), zap.String("role_id", roleID.Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to load role")
		return
	}
	webjson.Write(w, http.StatusOK, role)
}

// HandleDelete handles DELETE /workspaces/{workspaceID}/roles/{roleID}.
// Admin-only; system roles cannot be deleted. Memberships referencing the
// deleted role keep their role_id, and the engine fails closed on the
// dangling reference.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireWorkspaceAdmin(w, r, h.Engine)
	if !res.OK {
		return
	}

	roleID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "roleID"))
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid role id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	role, err := h.Roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, authz.ErrRoleNotFound) {
			webjson.Error(w, http.StatusNotFound, "role not found")
			return
		}
		h.Log.Error("role delete: load", zap.Error(err), zap.String("role_id", roleID.Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to delete role")
		return
	}
	if role.WorkspaceID != res.WorkspaceID() {
		webjson.Error(w, http.StatusNotFound, "role not found")
		return
	}

	if err := h.Roles.Delete(ctx, roleID); err != nil {
		switch {
		case errors.Is(err, rolestore.ErrSystemRole):
			webjson.Error(w, http.StatusForbidden, "SystemRoleImmutable")
		case errors.Is(err, authz.ErrRoleNotFound):
			webjson.Error(w, http.StatusNotFound, "role not found")
		default:
			h.Log.Error("role delete", zap.Error(err), zap.String("role_id", roleID.Hex()))
			webjson.Error(w, http.StatusInternalServerError, "failed to delete role")
		}
		return
	}

	h.Audit.RoleDeleted(ctx, r, res.Principal.ID, roleID, res.WorkspaceID(), role.Name)
	w.WriteHeader(http.StatusNoContent)
}

// roleInWorkspace verifies the role belongs to the workspace, writing a
// 404 (or 500) when it does not. Role ids from other workspaces must be
// indistinguishable from missing ones.
func (h *Handler) roleInWorkspace(ctx context.Context, w http.ResponseWriter, roleID, wsID primitive.ObjectID) bool {
	role, err := h.Roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, authz.ErrRoleNotFound) {
			webjson.Error(w, http.StatusNotFound, "role not found")
			return false
		}
		h.Log.Error("role lookup", zap.Error(err), zap.String("role_id", roleID.Hex()))
		webjson.Error(w, http.StatusInternalServerError, "failed to load role")
		return false
	}
	if role.WorkspaceID != wsID {
		webjson.Error(w, http.StatusNotFound, "role not found")
		return false
	}
	return true
}
