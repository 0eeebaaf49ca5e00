// internal/app/features/workspaces/handler.go
package workspaces

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	memberships "github.com/taskhubhq/taskhub/internal/app/store/memberships"
	projects "github.com/taskhubhq/taskhub/internal/app/store/projects"
	roles "github.com/taskhubhq/taskhub/internal/app/store/roles"
	tasks "github.com/taskhubhq/taskhub/internal/app/store/tasks"
	workspaces "github.com/taskhubhq/taskhub/internal/app/store/workspaces"
	"github.com/taskhubhq/taskhub/internal/app/system/auditlog"
	"github.com/taskhubhq/taskhub/internal/app/system/authz"
	"github.com/taskhubhq/taskhub/internal/app/system/provision"
)

// Handler is the shared dependency container for the workspaces feature.
// Create goes through the provisioner so the workspace, the creator's
// admin membership, and the system roles land together; delete cascades
// through every workspace-scoped collection.
type Handler struct {
	DB          *mongo.Database
	Workspaces  *workspaces.Store
	Memberships *memberships.Store
	Roles       *roles.Store
	Projects    *projects.Store
	Tasks       *tasks.Store
	Engine      *authz.Engine
	Provisioner *provision.Provisioner
	Audit       *auditlog.Logger
	Log         *zap.Logger
}

// NewHandler constructs a workspaces Handler. It is called from the
// bootstrap BuildHandler function, where stores and the engine are
// already initialized.
func NewHandler(db *mongo.Database, engine *authz.Engine, prov *provision.Provisioner, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Workspaces:  workspaces.New(db),
		Memberships: memberships.New(db),
		Roles:       roles.New(db),
		Projects:    projects.New(db),
		Tasks:       tasks.New(db),
		Engine:      engine,
		Provisioner: prov,
		Audit:       audit,
		Log:         logger,
	}
}
