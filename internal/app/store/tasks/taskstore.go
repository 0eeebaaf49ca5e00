// internal/app/store/tasks/taskstore.go
package taskstore

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/taskhubhq/taskhub/internal/app/store/queries/permfilter"
	"github.com/taskhubhq/taskhub/internal/app/system/authz"
	"github.com/taskhubhq/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrNotFound = errors.New("task not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tasks")}
}

// Create inserts a new task.
func (s *Store) Create(ctx context.Context, t models.Task) (models.Task, error) {
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.NameCI = text.Fold(t.Name)
	if t.Status == "" {
		t.Status = models.StatusBacklog
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// GetByID retrieves a task by id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Task, error) {
	var t models.Task
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, err
	}
	return t, nil
}

// Update holds the mutable task fields. Nil pointers leave the stored
// value untouched.
type Update struct {
	Name        *string
	Description *string
	Status      *models.TaskStatus
	AssignedID  *primitive.ObjectID
	DueDate     *time.Time
}

// Apply persists the non-nil fields of u.
func (s *Store) Apply(ctx context.Context, id primitive.ObjectID, u Update) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if u.Name != nil && strings.TrimSpace(*u.Name) != "" {
		set["name"] = *u.Name
		set["name_ci"] = text.Fold(*u.Name)
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	if u.AssignedID != nil {
		set["assigned_id"] = *u.AssignedID
	}
	if u.DueDate != nil {
		set["due_date"] = *u.DueDate
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a task by id. Returns the number of documents deleted.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListOptions are the caller-supplied narrowing filters for task listings,
// layered on top of (never instead of) the permission filter.
type ListOptions struct {
	ProjectID  primitive.ObjectID
	Status     models.TaskStatus
	AssignedID primitive.ObjectID
	Search     string // case-insensitive substring match on name
}

// ListByWorkspace returns the workspace's tasks visible under the given
// permission filter, narrowed by opts, sorted by board order then due
// date. A MatchNone filter yields an empty slice without querying.
func (s *Store) ListByWorkspace(ctx context.Context, workspaceID primitive.ObjectID, f authz.Filter, opts ListOptions) ([]models.Task, error) {
	base := bson.M{"workspace_id": workspaceID}
	if !opts.ProjectID.IsZero() {
		base["project_id"] = opts.ProjectID
	}
	if opts.Status != "" {
		base["status"] = opts.Status
	}
	if !opts.AssignedID.IsZero() {
		base["assigned_id"] = opts.AssignedID
	}
	if q := strings.TrimSpace(opts.Search); q != "" {
		base["name"] = bson.M{"$regex": regexp.QuoteMeta(q), "$options": "i"}
	}

	filter, ok := permfilter.Apply(base, f)
	if !ok {
		return []models.Task{}, nil
	}

	findOpts := options.Find().SetSort(bson.D{
		{Key: "status", Value: 1},
		{Key: "due_date", Value: 1},
	})
	cur, err := s.c.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tasks []models.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// DeleteByProject removes all tasks of a project.
func (s *Store) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByWorkspace removes all tasks of a workspace.
func (s *Store) DeleteByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"workspace_id": workspaceID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates indexes for the tasks collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workspace_id", Value: 1}, {Key: "project_id", Value: 1}},
			Options: options.Index().SetName("idx_task_workspace_project"),
		},
		{
			Keys:    bson.D{{Key: "workspace_id", Value: 1}, {Key: "assigned_id", Value: 1}},
			Options: options.Index().SetName("idx_task_workspace_assigned"),
		},
		{
			Keys:    bson.D{{Key: "workspace_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_task_workspace_status"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
