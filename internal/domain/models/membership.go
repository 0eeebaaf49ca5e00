// internal/domain/models/membership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Coarse membership roles. Admin bypasses all fine-grained permission
// checks; member relies entirely on the assigned Role document.
const (
	CoarseRoleAdmin  = "admin"
	CoarseRoleMember = "member"
)

// Membership is the authoritative join between users and workspaces.
// Exactly one document per (workspace_id, user_id).
//
// Role is the coarse role ("admin"|"member"). RoleID optionally references
// a workspace-scoped Role document carrying fine-grained permissions; a
// member without a RoleID has no permissions at all.
type Membership struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	WorkspaceID primitive.ObjectID  `bson:"workspace_id" json:"workspace_id"`
	UserID      primitive.ObjectID  `bson:"user_id" json:"user_id"`
	Role        string              `bson:"role" json:"role"` // "admin" | "member"
	RoleID      *primitive.ObjectID `bson:"role_id,omitempty" json:"role_id,omitempty"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
}

// IsAdmin reports whether the membership carries the coarse admin role.
func (m Membership) IsAdmin() bool {
	return m.Role == CoarseRoleAdmin
}
