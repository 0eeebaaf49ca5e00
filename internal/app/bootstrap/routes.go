// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	healthfeature "github.com/taskhubhq/taskhub/internal/app/features/health"
	membersfeature "github.com/taskhubhq/taskhub/internal/app/features/members"
	profilefeature "github.com/taskhubhq/taskhub/internal/app/features/profile"
	projectsfeature "github.com/taskhubhq/taskhub/internal/app/features/projects"
	rolesfeature "github.com/taskhubhq/taskhub/internal/app/features/roles"
	tasksfeature "github.com/taskhubhq/taskhub/internal/app/features/tasks"
	workspacesfeature "github.com/taskhubhq/taskhub/internal/app/features/workspaces"
	"github.com/taskhubhq/taskhub/internal/app/store/audit"
	memberships "github.com/taskhubhq/taskhub/internal/app/store/memberships"
	roles "github.com/taskhubhq/taskhub/internal/app/store/roles"
	userstore "github.com/taskhubhq/taskhub/internal/app/store/users"
	workspaces "github.com/taskhubhq/taskhub/internal/app/store/workspaces"
	"github.com/taskhubhq/taskhub/internal/app/system/auditlog"
	"github.com/taskhubhq/taskhub/internal/app/system/auth"
	"github.com/taskhubhq/taskhub/internal/app/system/authz"
	"github.com/taskhubhq/taskhub/internal/app/system/provision"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE
// app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and any Startup hooks have completed. The health endpoint is the only
// route outside the bearer-auth middleware; everything else resolves the
// principal first and workspace membership second.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	engine := authz.New(memberships.New(db), roles.New(db))
	verifier := auth.NewVerifier(appCfg.JWTSecret, userstore.New(db), logger)
	auditLogger := auditlog.New(audit.New(db), logger, auditlog.Config{
		Admin:    appCfg.AuditLogAdmin,
		Security: appCfg.AuditLogSecurity,
	})
	provisioner := provision.New(deps.MongoClient, workspaces.New(db), memberships.New(db), roles.New(db), logger)

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Get("/health", healthHandler.Serve)

	// Everything else requires a valid bearer token.
	r.Group(func(pr chi.Router) {
		pr.Use(verifier.RequireAuth)

		profileHandler := profilefeature.NewHandler(memberships.New(db), workspaces.New(db), logger)
		pr.Get("/profile", profileHandler.Serve)

		membersHandler := membersfeature.NewHandler(db, engine, auditLogger, logger)
		rolesHandler := rolesfeature.NewHandler(db, engine, auditLogger, logger)
		projectsHandler := projectsfeature.NewHandler(db, engine, logger)
		tasksHandler := tasksfeature.NewHandler(db, engine, logger)
		workspacesHandler := workspacesfeature.NewHandler(db, engine, provisioner, auditLogger, logger)

		pr.Mount("/workspaces", workspacesfeature.Routes(
			workspacesHandler,
			membersfeature.Routes(membersHandler),
			rolesfeature.Routes(rolesHandler),
			projectsfeature.Routes(projectsHandler),
			tasksfeature.Routes(tasksHandler),
		))
	})

	return r, nil
}
