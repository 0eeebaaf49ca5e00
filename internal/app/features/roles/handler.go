// internal/app/features/roles/handler.go
package roles

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	memberships "github.com/taskhubhq/taskhub/internal/app/store/memberships"
	roles "github.com/taskhubhq/taskhub/internal/app/store/roles"
	"github.com/taskhubhq/taskhub/internal/app/system/auditlog"
	"github.com/taskhubhq/taskhub/internal/app/system/authz"
)

// Handler is the shared dependency container for the roles feature.
// Every mutation here is admin-gated at the boundary; fine-grained
// permissions cannot grant role management.
type Handler struct {
	Roles       *roles.Store
	Memberships *memberships.Store
	Engine      *authz.Engine
	Audit       *auditlog.Logger
	Log         *zap.Logger
}

// NewHandler constructs a roles Handler.
func NewHandler(db *mongo.Database, engine *authz.Engine, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Roles:       roles.New(db),
		Memberships: memberships.New(db),
		Engine:      engine,
		Audit:       audit,
		Log:         logger,
	}
}
