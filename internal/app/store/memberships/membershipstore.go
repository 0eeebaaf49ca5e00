// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	"github.com/taskhubhq/taskhub/internal/app/system/authz"
	"github.com/taskhubhq/taskhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	errBadRole = errors.New(`role must be "admin" or "member"`)

	// ErrDuplicateMembership is returned when a (workspace, user) pair
	// already has a membership document.
	ErrDuplicateMembership = errors.New("user is already a member of this workspace")

	// ErrNotFound is returned for lookups by membership id.
	ErrNotFound = errors.New("membership not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("memberships")}
}

// Create inserts a membership after validating the coarse role.
func (s *Store) Create(ctx context.Context, m models.Membership) (models.Membership, error) {
	if m.Role != models.CoarseRoleAdmin && m.Role != models.CoarseRoleMember {
		return models.Membership{}, errBadRole
	}
	now := time.Now().UTC()
	m.ID = primitive.NewObjectID()
	m.CreatedAt = now
	m.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, m)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Membership{}, ErrDuplicateMembership
		}
		return models.Membership{}, err
	}
	return m, nil
}

// Get is the (user, workspace) point query the authorization engine
// resolves on every request. A missing record surfaces as
// authz.ErrNotMember so callers deny with 403 rather than 404.
func (s *Store) Get(ctx context.Context, userID, workspaceID primitive.ObjectID) (models.Membership, error) {
	var m models.Membership
	err := s.c.FindOne(ctx, bson.M{"user_id": userID, "workspace_id": workspaceID}).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Membership{}, authz.ErrNotMember
		}
		return models.Membership{}, err
	}
	return m, nil
}

// GetByID retrieves a membership by its document id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Membership, error) {
	var m models.Membership
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Membership{}, ErrNotFound
		}
		return models.Membership{}, err
	}
	return m, nil
}

// AssignRole overwrites the fine-grained role reference on a membership.
// The coarse role is untouched.
func (s *Store) AssignRole(ctx context.Context, id, roleID primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"role_id":    roleID,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByWorkspace returns all memberships of a workspace, oldest first.
func (s *Store) ListByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) ([]models.Membership, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"workspace_id": workspaceID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memberships []models.Membership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListByUser returns all memberships held by a user.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Membership, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memberships []models.Membership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// Remove deletes a membership by id. Returns the number of documents
// deleted (0 or 1).
func (s *Store) Remove(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByWorkspace removes all memberships of a workspace. Used by the
// provisioning rollback and by workspace deletion.
func (s *Store) DeleteByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"workspace_id": workspaceID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountByWorkspace returns the number of memberships in a workspace,
// optionally filtered by coarse role.
func (s *Store) CountByWorkspace(ctx context.Context, workspaceID primitive.ObjectID, role string) (int64, error) {
	filter := bson.M{"workspace_id": workspaceID}
	if role != "" {
		filter["role"] = role
	}
	return s.c.CountDocuments(ctx, filter)
}

// EnsureIndexes creates indexes for the memberships collection. The
// unique (workspace_id, user_id) index is what makes "exactly one
// membership per pair" hold under concurrent joins.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workspace_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_membership_workspace_user"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_membership_user"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
