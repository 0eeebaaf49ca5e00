// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	users "github.com/taskhubhq/taskhub/internal/app/store/users"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
// TaskHub uses it to make sure the configured bootstrap admin account
// exists, so a fresh deployment has a first user without manual Mongo
// surgery.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.BootstrapAdminEmail == "" {
		return nil
	}

	u, err := users.New(deps.MongoDatabase).EnsureBootstrapAdmin(ctx,
		appCfg.BootstrapAdminUsername,
		appCfg.BootstrapAdminEmail,
		appCfg.BootstrapAdminPassword,
	)
	if err != nil {
		logger.Error("bootstrap admin setup failed", zap.Error(err))
		return err
	}

	logger.Info("bootstrap admin ensured",
		zap.String("user_id", u.ID.Hex()),
		zap.String("email", u.Email),
	)
	return nil
}
