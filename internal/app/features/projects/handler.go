// internal/app/features/projects/handler.go
package projects

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	projects "github.com/taskhubhq/taskhub/internal/app/store/projects"
	tasks "github.com/taskhubhq/taskhub/internal/app/store/tasks"
	"github.com/taskhubhq/taskhub/internal/app/system/authz"
)

// Handler is the shared dependency container for the projects feature.
type Handler struct {
	Projects *projects.Store
	Tasks    *tasks.Store
	Engine   *authz.Engine
	Log      *zap.Logger
}

// NewHandler constructs a projects Handler.
func NewHandler(db *mongo.Database, engine *authz.Engine, logger *zap.Logger) *Handler {
	return &Handler{
		Projects: projects.New(db),
		Tasks:    tasks.New(db),
		Engine:   engine,
		Log:      logger,
	}
}
