// internal/app/store/roles/rolestore.go
package rolestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/taskhubhq/taskhub/internal/app/system/authz"
	"github.com/taskhubhq/taskhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	// ErrDuplicateRoleName is returned when a role with the same folded
	// name already exists in the workspace.
	ErrDuplicateRoleName = errors.New("a role with this name already exists in the workspace")

	// ErrSystemRole is returned for update/delete attempts on system
	// roles, regardless of who asks.
	ErrSystemRole = errors.New("system roles cannot be modified or deleted")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("roles")}
}

// Create inserts a new role. Name uniqueness within the workspace is
// enforced by the (workspace_id, name_ci) unique index.
func (s *Store) Create(ctx context.Context, r models.Role) (models.Role, error) {
	now := time.Now().UTC()
	r.ID = primitive.NewObjectID()
	r.NameCI = text.Fold(r.Name)
	r.CreatedAt = now
	r.UpdatedAt = now
	if r.Permissions == nil {
		r.Permissions = []models.Permission{}
	}
	_, err := s.c.InsertOne(ctx, r)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Role{}, ErrDuplicateRoleName
		}
		return models.Role{}, err
	}
	return r, nil
}

// GetByID retrieves a role. A missing document surfaces as
// authz.ErrRoleNotFound, which the engine treats as a dangling role
// reference (fail closed).
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Role, error) {
	var r models.Role
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Role{}, authz.ErrRoleNotFound
		}
		return models.Role{}, err
	}
	return r, nil
}

// ListByWorkspace returns all roles of a workspace, newest first.
func (s *Store) ListByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) ([]models.Role, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"workspace_id": workspaceID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var roles []models.Role
	if err := cur.All(ctx, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// Update modifies a non-system role's name, description, or permissions.
// Nil permissions leaves the existing rules untouched; an empty non-nil
// slice clears them.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, name, description string, permissions []models.Permission) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsSystemRole {
		return ErrSystemRole
	}

	set := bson.M{
		"updated_at": time.Now().UTC(),
		// Description can be cleared (set to empty)
		"description": description,
	}
	if strings.TrimSpace(name) != "" {
		set["name"] = name
		set["name_ci"] = text.Fold(name)
	}
	if permissions != nil {
		set["permissions"] = permissions
	}

	_, err = s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateRoleName
		}
		return err
	}
	return nil
}

// Delete removes a non-system role. Memberships referencing the role keep
// a dangling role_id; the engine fails closed on those.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsSystemRole {
		return ErrSystemRole
	}
	_, err = s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// DeleteByWorkspace removes all roles of a workspace.
func (s *Store) DeleteByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"workspace_id": workspaceID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// SeedSystemRoles creates the built-in Admin and Member roles for a new
// workspace and returns them. Admin grants everything; Member reads all
// resources and may create tasks plus read/update its own. Conditions on
// a permission must all hold, so pairing own with assigned would narrow
// members to the intersection; the seed keeps own alone. Both roles
// carry is_system_role and are refused by Update/Delete.
func (s *Store) SeedSystemRoles(ctx context.Context, workspaceID, createdBy primitive.ObjectID) (admin, member models.Role, err error) {
	fullActions := models.Actions{Create: true, Read: true, Update: true, Delete: true}

	adminPerms := make([]models.Permission, 0, len(models.AllResources))
	for _, res := range models.AllResources {
		adminPerms = append(adminPerms, models.Permission{Resource: res, Actions: fullActions})
	}

	memberPerms := []models.Permission{
		{
			Resource:   models.ResourceTasks,
			Actions:    models.Actions{Create: true, Read: true, Update: true},
			Conditions: models.Conditions{Own: true},
		},
		{Resource: models.ResourceProjects, Actions: models.Actions{Read: true}},
		{Resource: models.ResourceWorkspaces, Actions: models.Actions{Read: true}},
		{Resource: models.ResourceMembers, Actions: models.Actions{Read: true}},
	}

	admin, err = s.Create(ctx, models.Role{
		WorkspaceID:  workspaceID,
		Name:         models.SystemRoleAdmin,
		Description:  "Full access to everything in the workspace",
		Permissions:  adminPerms,
		IsSystemRole: true,
		CreatedBy:    createdBy,
	})
	if err != nil {
		return models.Role{}, models.Role{}, err
	}

	member, err = s.Create(ctx, models.Role{
		WorkspaceID:  workspaceID,
		Name:         models.SystemRoleMember,
		Description:  "Read access, plus task work on items you created",
		Permissions:  memberPerms,
		IsSystemRole: true,
		CreatedBy:    createdBy,
	})
	if err != nil {
		return models.Role{}, models.Role{}, err
	}
	return admin, member, nil
}

// GetSystemRole returns the system role with the given name in a
// workspace (e.g. "Member" for invite joins).
func (s *Store) GetSystemRole(ctx context.Context, workspaceID primitive.ObjectID, name string) (models.Role, error) {
	var r models.Role
	err := s.c.FindOne(ctx, bson.M{
		"workspace_id":   workspaceID,
		"name_ci":        text.Fold(name),
		"is_system_role": true,
	}).Decode(&r)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Role{}, authz.ErrRoleNotFound
		}
		return models.Role{}, err
	}
	return r, nil
}

// EnsureIndexes creates indexes for the roles collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// Unique folded name per workspace
		{
			Keys:    bson.D{{Key: "workspace_id", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_role_workspace_name_ci"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
