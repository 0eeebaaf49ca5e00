// internal/app/system/authz/engine.go

// Package authz is the authorization engine: it decides whether a principal
// may perform an action on a resource within a workspace, and derives
// query filters for list operations.
//
// Every denial is a Decision value, never an error; errors are reserved
// for infrastructure failures (membership/role lookups). Callers map a
// denial to 403 and an error to 500 and must not conflate the two.
//
// The coarse admin bypass lives here and only here. No caller should
// re-implement role string comparisons.
package authz

import (
	"context"
	"errors"

	"github.com/taskhubhq/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Action is one of the four CRUD verbs a permission rule can grant.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// DenyReason explains a denial. Reason strings are safe to return to
// clients: they reveal permission structure, not data.
type DenyReason string

const (
	DenyNoRoleAssigned          DenyReason = "NoRoleAssigned"
	DenyNoPermissionForResource DenyReason = "NoPermissionForResource"
	DenyActionNotAllowed        DenyReason = "ActionNotAllowed"
	DenyNotOwner                DenyReason = "NotOwner"
	DenyNotAssignee             DenyReason = "NotAssignee"
	DenyStatusNotAllowed        DenyReason = "StatusNotAllowed"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  DenyReason // set only when Allowed is false
}

// Allow is the positive decision.
var Allow = Decision{Allowed: true}

// Deny builds a negative decision with the given reason.
func Deny(reason DenyReason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// ErrNotMember is returned by ResolveMembership when the principal has no
// membership in the workspace. Callers must surface it as 403, not 404,
// to avoid leaking workspace existence.
var ErrNotMember = errors.New("not a member of this workspace")

// Target is the minimal view of a resource document the engine needs to
// evaluate conditions. The engine does not otherwise interpret resource
// content.
type Target struct {
	OwnerID    primitive.ObjectID
	AssignedID primitive.ObjectID
	Status     models.TaskStatus
}

// Checks declares which conditions the call site opts into. Not every
// action on a resource is ownership- or status-sensitive (listing has no
// single target at all), so each domain service states which checks are
// meaningful for its operation.
type Checks struct {
	Ownership  bool
	Assignment bool
	Status     bool
}

// MembershipSource resolves the (user, workspace) membership point query.
type MembershipSource interface {
	Get(ctx context.Context, userID, workspaceID primitive.ObjectID) (models.Membership, error)
}

// RoleSource fetches a role by id. The engine performs a single fetch per
// evaluation and never caches across requests, so a role edited mid-flight
// is stale for at most the current request.
type RoleSource interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Role, error)
}

// ErrRoleNotFound must be returned by RoleSource implementations when the
// referenced role no longer exists (dangling role_id on a membership).
var ErrRoleNotFound = errors.New("role not found")

// Engine evaluates authorization decisions and list filters.
type Engine struct {
	memberships MembershipSource
	roles       RoleSource
}

// New creates an Engine over the given membership and role sources.
func New(memberships MembershipSource, roles RoleSource) *Engine {
	return &Engine{memberships: memberships, roles: roles}
}

// ResolveMembership looks up the caller's membership in a workspace.
// Returns ErrNotMember when no record exists.
func (e *Engine) ResolveMembership(ctx context.Context, userID, workspaceID primitive.ObjectID) (models.Membership, error) {
	return e.memberships.Get(ctx, userID, workspaceID)
}

// Authorize evaluates whether the membership may perform action on
// resource. Rules run in fixed order and the first decisive rule wins:
//
//  1. coarse admin -> allow unconditionally
//  2. no role assigned -> deny (fail closed)
//  3. no permission entry for the resource -> deny
//  4. action flag unset -> deny
//  5. opted-in conditions, conjunctively: own, assigned, status
//
// target may be nil when no opted-in condition needs one (e.g. create
// without a status check). The returned error is non-nil only for role
// lookup failures.
func (e *Engine) Authorize(ctx context.Context, m models.Membership, resource models.ResourceName, action Action, target *Target, checks Checks) (Decision, error) {
	if m.IsAdmin() {
		return Allow, nil
	}
	if m.RoleID == nil {
		return Deny(DenyNoRoleAssigned), nil
	}

	role, err := e.roles.GetByID(ctx, *m.RoleID)
	if err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			// Dangling role reference: the role was deleted after
			// assignment. Treated the same as having no role.
			return Deny(DenyNoRoleAssigned), nil
		}
		return Decision{}, err
	}

	perm, ok := role.PermissionFor(resource)
	if !ok {
		return Deny(DenyNoPermissionForResource), nil
	}
	if !actionAllowed(perm.Actions, action) {
		return Deny(DenyActionNotAllowed), nil
	}

	return evaluateConditions(m, perm.Conditions, target, checks), nil
}

// evaluateConditions applies the opted-in conditions conjunctively; every
// applicable condition must pass.
func evaluateConditions(m models.Membership, c models.Conditions, target *Target, checks Checks) Decision {
	if checks.Ownership && c.Own {
		if target == nil || target.OwnerID != m.UserID {
			return Deny(DenyNotOwner)
		}
	}
	if checks.Assignment && c.Assigned {
		if target == nil || target.AssignedID != m.UserID {
			return Deny(DenyNotAssignee)
		}
	}
	if checks.Status && len(c.Status) > 0 {
		if target == nil || !statusIn(target.Status, c.Status) {
			return Deny(DenyStatusNotAllowed)
		}
	}
	return Allow
}

func actionAllowed(a models.Actions, action Action) bool {
	switch action {
	case ActionCreate:
		return a.Create
	case ActionRead:
		return a.Read
	case ActionUpdate:
		return a.Update
	case ActionDelete:
		return a.Delete
	}
	return false
}

func statusIn(s models.TaskStatus, allowed []models.TaskStatus) bool {
	for _, a := range allowed {
		if a == s {
			return true
		}
	}
	return false
}

// ListFilter derives the query filter scoping a list/read-many operation,
// avoiding per-row Authorize calls.
//
//   - admin -> unrestricted filter
//   - member without a role, or with a dangling role id -> MatchNone
//     (fail closed: an inability to read is an empty result set)
//   - no permission entry for the resource -> deny (callers map to 403)
//   - read flag unset -> deny
//   - otherwise the set conditions compose conjunctively
func (e *Engine) ListFilter(ctx context.Context, m models.Membership, resource models.ResourceName) (Filter, Decision, error) {
	if m.IsAdmin() {
		return MatchAll(), Allow, nil
	}
	if m.RoleID == nil {
		return MatchNone(), Allow, nil
	}

	role, err := e.roles.GetByID(ctx, *m.RoleID)
	if err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			return MatchNone(), Allow, nil
		}
		return Filter{}, Decision{}, err
	}

	perm, ok := role.PermissionFor(resource)
	if !ok {
		return Filter{}, Deny(DenyNoPermissionForResource), nil
	}
	if !perm.Actions.Read {
		return Filter{}, Deny(DenyActionNotAllowed), nil
	}

	f := MatchAll()
	if perm.Conditions.Own {
		f = f.And(FieldOwner, OpEq, m.UserID)
	}
	if perm.Conditions.Assigned {
		f = f.And(FieldAssignee, OpEq, m.UserID)
	}
	if len(perm.Conditions.Status) > 0 {
		f = f.And(FieldStatus, OpIn, perm.Conditions.Status)
	}
	return f, Allow, nil
}
