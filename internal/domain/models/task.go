// internal/domain/models/task.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskStatus is a Kanban column. Statuses are ordered; board rendering and
// transition rules rely on the order index, the authorization engine only
// checks set membership.
type TaskStatus string

const (
	StatusBacklog TaskStatus = "Backlog"
	StatusTodo    TaskStatus = "Todo"
	StatusDoing   TaskStatus = "Doing"
	StatusDone    TaskStatus = "Done"
)

// AllTaskStatuses lists every status in board order.
var AllTaskStatuses = []TaskStatus{StatusBacklog, StatusTodo, StatusDoing, StatusDone}

// IsValidTaskStatus reports whether s is a known status.
func IsValidTaskStatus(s TaskStatus) bool {
	for _, st := range AllTaskStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// Order returns the board position of s (Backlog=0 .. Done=3), or -1 for
// an unknown status.
func (s TaskStatus) Order() int {
	for i, st := range AllTaskStatuses {
		if st == s {
			return i
		}
	}
	return -1
}

// Task is a unit of work on a project's board. UserID is the creator,
// AssignedID the current assignee; the authorization engine reads those
// two fields plus Status to evaluate own/assigned/status conditions.
type Task struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkspaceID primitive.ObjectID `bson:"workspace_id" json:"workspace_id"`
	ProjectID   primitive.ObjectID `bson:"project_id" json:"project_id"`

	Name        string     `bson:"name" json:"name"`
	NameCI      string     `bson:"name_ci" json:"-"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	Status      TaskStatus `bson:"status" json:"status"`

	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	AssignedID primitive.ObjectID `bson:"assigned_id,omitempty" json:"assigned_id,omitempty"`
	DueDate    *time.Time         `bson:"due_date,omitempty" json:"due_date,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
