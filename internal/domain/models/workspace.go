// internal/domain/models/workspace.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Workspace is the top-level tenant container in TaskHub. Projects, tasks,
// memberships and roles all belong to exactly one workspace via their
// workspace_id field.
//
// OwnerID records the creating user and never changes; the creator's admin
// membership is written in the same provisioning step as the workspace
// itself (see system/provision).
type Workspace struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	Name   string `bson:"name" json:"name"`
	NameCI string `bson:"name_ci" json:"-"` // Case-insensitive for search

	OwnerID primitive.ObjectID `bson:"owner_id" json:"owner_id"`

	// InviteCode is the join code handed out to prospective members.
	// Rotatable by workspace admins.
	InviteCode string `bson:"invite_code" json:"invite_code"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
