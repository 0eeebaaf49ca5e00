// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level, CORS, and request size limits. AppConfig is
// everything specific to TaskHub itself.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// JWTSecret verifies the HS256 bearer tokens issued by the identity
	// service. TaskHub only verifies tokens; it never issues them.
	JWTSecret string

	// Bootstrap admin, created (or left alone if present) at startup.
	BootstrapAdminEmail    string
	BootstrapAdminUsername string
	BootstrapAdminPassword string

	// Audit logging destinations: "all" (db+log), "db", "log", or "off".
	AuditLogAdmin    string
	AuditLogSecurity string
}
