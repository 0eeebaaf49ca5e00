// Package gates provides authorization gate functions for HTTP handlers.
// Gates check authentication and workspace membership, writing the
// appropriate JSON error when checks fail.
//
// # Three-Tier Authorization Pattern
//
//  1. Route-Level Middleware (auth.RequireAuth)
//     Applied in routes.go so every API route requires a valid bearer
//     token. Handlers behind it can assume a principal exists.
//
//  2. Handler-Level Gates (this package)
//     Resolve the caller's membership in the workspace named by the URL
//     and, for admin-only endpoints, require workspace admin. Gates write
//     error responses and return the membership for further checks.
//
//  3. Permission Engine (internal/app/system/authz)
//     Resource/action decisions against the member's assigned role.
//     Handlers call Authorize/ListFilter with the membership a gate
//     returned; Deny here translates a denied decision to a 403.
//
// Membership failures always produce 403, never 404, so the API does not
// reveal which workspace ids exist.
package gates

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskhubhq/taskhub/internal/app/system/auth"
	"github.com/taskhubhq/taskhub/internal/app/system/authz"
	"github.com/taskhubhq/taskhub/internal/app/system/webjson"
	"github.com/taskhubhq/taskhub/internal/domain/models"
)

// Result contains the outcome of a gate check. When OK is false the gate
// has already written the error response.
type Result struct {
	Principal  auth.Principal
	Membership models.Membership
	OK         bool
}

// WorkspaceID is a convenience accessor for the resolved workspace.
func (res Result) WorkspaceID() primitive.ObjectID {
	return res.Membership.WorkspaceID
}

// RequirePrincipal returns the authenticated principal. RequireAuth
// middleware should make failure impossible; the 401 is a backstop for
// handlers mounted outside it.
func RequirePrincipal(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	p, ok := auth.CurrentUser(r)
	if !ok {
		webjson.Error(w, http.StatusUnauthorized, "authentication required")
		return auth.Principal{}, false
	}
	return *p, true
}

// RequireMember resolves the caller's membership in the workspace named by
// the {workspaceID} URL parameter. Malformed ids get 400; non-members get
// 403; lookup failures get 500.
func RequireMember(w http.ResponseWriter, r *http.Request, engine *authz.Engine) Result {
	p, ok := RequirePrincipal(w, r)
	if !ok {
		return Result{OK: false}
	}

	wsID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "workspaceID"))
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid workspace id")
		return Result{OK: false}
	}

	m, err := engine.ResolveMembership(r.Context(), p.ID, wsID)
	if err != nil {
		if errors.Is(err, authz.ErrNotMember) {
			webjson.Error(w, http.StatusForbidden, "not a member of this workspace")
		} else {
			webjson.Error(w, http.StatusInternalServerError, "failed to resolve membership")
		}
		return Result{OK: false}
	}

	return Result{Principal: p, Membership: m, OK: true}
}

// RequireWorkspaceAdmin is RequireMember plus a workspace admin check.
// Role and permission management endpoints use this; fine-grained
// permissions cannot grant these operations.
func RequireWorkspaceAdmin(w http.ResponseWriter, r *http.Request, engine *authz.Engine) Result {
	res := RequireMember(w, r, engine)
	if !res.OK {
		return res
	}
	if !res.Membership.IsAdmin() {
		webjson.Error(w, http.StatusForbidden, "workspace admin required")
		return Result{OK: false}
	}
	return res
}

// Deny writes the 403 for a denied authorization decision. The reason
// string is part of the API contract; clients branch on it.
func Deny(w http.ResponseWriter, d authz.Decision) {
	webjson.Error(w, http.StatusForbidden, string(d.Reason))
}
