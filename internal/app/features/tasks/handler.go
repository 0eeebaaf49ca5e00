// internal/app/features/tasks/handler.go
package tasks

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	projects "github.com/taskhubhq/taskhub/internal/app/store/projects"
	tasks "github.com/taskhubhq/taskhub/internal/app/store/tasks"
	"github.com/taskhubhq/taskhub/internal/app/system/authz"
)

// Handler is the shared dependency container for the tasks feature.
type Handler struct {
	Tasks    *tasks.Store
	Projects *projects.Store
	Engine   *authz.Engine
	Log      *zap.Logger
}

// NewHandler constructs a tasks Handler.
func NewHandler(db *mongo.Database, engine *authz.Engine, logger *zap.Logger) *Handler {
	return &Handler{
		Tasks:    tasks.New(db),
		Projects: projects.New(db),
		Engine:   engine,
		Log:      logger,
	}
}
