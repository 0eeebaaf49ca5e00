// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskhubhq/taskhub/internal/app/store/audit"
	memberships "github.com/taskhubhq/taskhub/internal/app/store/memberships"
	projects "github.com/taskhubhq/taskhub/internal/app/store/projects"
	roles "github.com/taskhubhq/taskhub/internal/app/store/roles"
	tasks "github.com/taskhubhq/taskhub/internal/app/store/tasks"
	users "github.com/taskhubhq/taskhub/internal/app/store/users"
	workspaces "github.com/taskhubhq/taskhub/internal/app/store/workspaces"
)

/*
EnsureAll is called at startup. Each store's EnsureIndexes is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
Several of the unique indexes are load-bearing: membership uniqueness and
role-name uniqueness are enforced here, not in application code.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := users.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := workspaces.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "workspaces: "+err.Error())
	}
	if err := memberships.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "memberships: "+err.Error())
	}
	if err := roles.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "roles: "+err.Error())
	}
	if err := projects.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "projects: "+err.Error())
	}
	if err := tasks.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "tasks: "+err.Error())
	}
	if err := audit.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "audit_log: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
