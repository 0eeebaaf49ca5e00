// internal/app/policy/workspacepolicy.go
package workspacepolicy

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskhubhq/taskhub/internal/domain/models"
)

// IsOwner reports whether userID owns the workspace. The owner field is
// authoritative; admins who are not the owner cannot delete the workspace
// or remove the owner's membership.
func IsOwner(ctx context.Context, db *mongo.Database, workspaceID, userID primitive.ObjectID) (bool, error) {
	c := db.Collection("workspaces")
	n, err := c.CountDocuments(ctx, bson.M{"_id": workspaceID, "owner_id": userID})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CanRemoveMember reports whether actor may remove target from the
// workspace ws:
//   - nobody removes the owner's membership
//   - workspace admins can remove anyone else
//   - non-admin members can remove only themselves (leave)
func CanRemoveMember(ws models.Workspace, actor, target models.Membership) bool {
	if target.UserID == ws.OwnerID {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	return actor.UserID == target.UserID
}

// CanDeleteWorkspace reports whether actor may delete the workspace.
// Only the owner can; deleting a workspace cascades through projects,
// tasks, roles, and memberships.
func CanDeleteWorkspace(ws models.Workspace, actorUserID primitive.ObjectID) bool {
	return ws.OwnerID == actorUserID
}
