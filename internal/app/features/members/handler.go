// internal/app/features/members/handler.go
package members

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	memberships "github.com/taskhubhq/taskhub/internal/app/store/memberships"
	users "github.com/taskhubhq/taskhub/internal/app/store/users"
	workspaces "github.com/taskhubhq/taskhub/internal/app/store/workspaces"
	"github.com/taskhubhq/taskhub/internal/app/system/auditlog"
	"github.com/taskhubhq/taskhub/internal/app/system/authz"
)

// Handler is the shared dependency container for the members feature.
type Handler struct {
	Memberships *memberships.Store
	Users       *users.Store
	Workspaces  *workspaces.Store
	Engine      *authz.Engine
	Audit       *auditlog.Logger
	Log         *zap.Logger
}

// NewHandler constructs a members Handler.
func NewHandler(db *mongo.Database, engine *authz.Engine, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Memberships: memberships.New(db),
		Users:       users.New(db),
		Workspaces:  workspaces.New(db),
		Engine:      engine,
		Audit:       audit,
		Log:         logger,
	}
}
