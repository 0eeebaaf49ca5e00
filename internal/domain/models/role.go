// internal/domain/models/role.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ResourceName identifies a permission-governed resource kind.
type ResourceName string

const (
	ResourceTasks      ResourceName = "tasks"
	ResourceProjects   ResourceName = "projects"
	ResourceWorkspaces ResourceName = "workspaces"
	ResourceMembers    ResourceName = "members"
	ResourceSettings   ResourceName = "settings"
)

// Names of the seeded per-workspace system roles.
const (
	SystemRoleAdmin  = "Admin"
	SystemRoleMember = "Member"
)

// AllResources lists every permission-governed resource kind.
var AllResources = []ResourceName{
	ResourceTasks,
	ResourceProjects,
	ResourceWorkspaces,
	ResourceMembers,
	ResourceSettings,
}

// IsValidResource reports whether name is one of the governed resource kinds.
func IsValidResource(name ResourceName) bool {
	for _, r := range AllResources {
		if r == name {
			return true
		}
	}
	return false
}

// Actions holds the four CRUD verbs as explicit flags. A fixed record
// rather than a map so the engine can match exhaustively.
type Actions struct {
	Create bool `bson:"create" json:"create"`
	Read   bool `bson:"read" json:"read"`
	Update bool `bson:"update" json:"update"`
	Delete bool `bson:"delete" json:"delete"`
}

// Conditions narrow an otherwise-allowed action. Absence of a condition
// imposes no constraint; each set condition is a restrictive add-on.
type Conditions struct {
	// Own restricts mutations to resources created by the caller.
	Own bool `bson:"own" json:"own"`
	// Assigned restricts mutations to resources assigned to the caller.
	Assigned bool `bson:"assigned" json:"assigned"`
	// Status, when non-empty, restricts status-bearing mutations to the
	// listed task statuses.
	Status []TaskStatus `bson:"status,omitempty" json:"status,omitempty"`
}

// Permission is a resource-scoped rule embedded in a Role: action flags
// plus optional conditions. A role holds at most one meaningful entry per
// resource; the engine takes the first match if duplicates exist.
type Permission struct {
	Resource   ResourceName `bson:"resource" json:"resource"`
	Actions    Actions      `bson:"actions" json:"actions"`
	Conditions Conditions   `bson:"conditions" json:"conditions"`
}

// Role is a named, workspace-scoped bundle of Permissions assignable to
// non-admin memberships. Name is unique within its workspace (folded
// case-insensitively via name_ci).
//
// System roles (the seeded Admin and Member roles) cannot be updated or
// deleted; the role store enforces this at the boundary.
type Role struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkspaceID primitive.ObjectID `bson:"workspace_id" json:"workspace_id"`

	Name        string `bson:"name" json:"name"`
	NameCI      string `bson:"name_ci" json:"-"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`

	Permissions  []Permission       `bson:"permissions" json:"permissions"`
	IsSystemRole bool               `bson:"is_system_role" json:"is_system_role"`
	CreatedBy    primitive.ObjectID `bson:"created_by" json:"created_by"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// PermissionFor returns the first permission entry matching resource.
func (r Role) PermissionFor(resource ResourceName) (Permission, bool) {
	for _, p := range r.Permissions {
		if p.Resource == resource {
			return p, true
		}
	}
	return Permission{}, false
}
