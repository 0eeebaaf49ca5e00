// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/taskhubhq/taskhub/internal/app/store/audit"
)

// Config holds audit logging configuration.
type Config struct {
	// Admin controls logging for workspace/member/role administration.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Admin string
	// Security controls logging for denied authorization decisions.
	// Same values as Admin.
	Security string
}

// Logger provides convenience methods for recording audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.WorkspaceID != nil {
		fields = append(fields, zap.String("workspace_id", event.WorkspaceID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAdmin:
		setting = l.config.Admin
	case audit.CategorySecurity:
		setting = l.config.Security
	default:
		setting = "all"
	}

	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Workspace Events ---

// WorkspaceCreated logs the creation of a workspace.
func (l *Logger) WorkspaceCreated(ctx context.Context, r *http.Request, actorID, wsID primitive.ObjectID, wsName string) {
	l.Log(ctx, audit.Event{
		Category:    audit.CategoryAdmin,
		EventType:   audit.EventWorkspaceCreated,
		ActorID:     &actorID,
		WorkspaceID: &wsID,
		IP:          getClientIP(r),
		UserAgent:   r.UserAgent(),
		Success:     true,
		Details: map[string]string{
			"workspace_name": wsName,
		},
	})
}

// WorkspaceUpdated logs a workspace rename.
func (l *Logger) WorkspaceUpdated(ctx context.Context, r *http.Request, actorID, wsID primitive.ObjectID, wsName string) {
	l.Log(ctx, audit.Event{
		Category:    audit.CategoryAdmin,
		EventType:   audit.EventWorkspaceUpdated,
		ActorID:     &actorID,
		WorkspaceID: &wsID,
		IP:          getClientIP(r),
		UserAgent:   r.UserAgent(),
		Success:     true,
		Details: map[string]string{
			"workspace_name": wsName,
		},
	})
}

// WorkspaceDeleted logs a workspace deletion.
func (l *Logger) WorkspaceDeleted(ctx context.Context, r *http.Request, actorID, wsID primitive.ObjectID, wsName string) {
	l.Log(ctx, audit.Event{
		Category:    audit.CategoryAdmin,
		EventType:   audit.EventWorkspaceDeleted,
		ActorID:     &actorID,
		WorkspaceID: &wsID,
		IP:          getClientIP(r),
		UserAgent:   r.UserAgent(),
		Success:     true,
		Details: map[string]string{
			"workspace_name": wsName,
		},
	})
}

// InviteCodeReset logs rotation of a workspace invite code. The new code
// itself is never recorded.
func (l *Logger) InviteCodeReset(ctx context.Context, r *http.Request, actorID, wsID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:    audit.CategoryAdmin,
		EventType:   audit.EventInviteCodeReset,
		ActorID:     &actorID,
		WorkspaceID: &wsID,
		IP:          getClientIP(r),
		UserAgent:   r.UserAgent(),
		Success:     true,
	})
}

// --- Membership Events ---

// MemberJoined logs a user joining a workspace via invite code.
func (l *Logger) MemberJoined(ctx context.Context, r *http.Request, userID, wsID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:    audit.CategoryAdmin,
		EventType:   audit.EventMemberJoined,
		ActorID:     &userID,
		UserID:      &userID,
		WorkspaceID: &wsID,
		IP:          getClientIP(r),
		UserAgent:   r.UserAgent(),
		Success:     true,
	})
}

// MemberRemoved logs an admin removing a member from a workspace.
func (l *Logger) MemberRemoved(ctx context.Context, r *http.Request, actorID, targetUserID, wsID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:    audit.CategoryAdmin,
		EventType:   audit.EventMemberRemoved,
		ActorID:     &actorID,
		UserID:      &targetUserID,
		WorkspaceID: &wsID,
		IP:          getClientIP(r),
		UserAgent:   r.UserAgent(),
		Success:     true,
	})
}

// --- Role Events ---

// RoleCreated logs creation of a workspace role.
func (l *Logger) RoleCreated(ctx context.Context, r *http.Request, actorID, roleID, wsID primitive.ObjectID, roleName string) {
	l.Log(ctx, audit.Event{
		Category:    audit.CategoryAdmin,
		EventType:   audit.EventRoleCreated,
		ActorID:     &actorID,
		WorkspaceID: &wsID,
		IP:          getClientIP(r),
		UserAgent:   r.UserAgent(),
		Success:     true,
		Details: map[string]string{
			"role_id":   roleID.Hex(),
			"role_name": roleName,
		},
	})
}

// RoleUpdated logs an update to a role's name or permissions.
func (l *Logger) RoleUpdated(ctx context.Context, r *http.Request, actorID, roleID, wsID primitive.ObjectID, roleName string) {
	l.Log(ctx, audit.Event{
		Category:    audit.CategoryAdmin,
		EventType:   audit.EventRoleUpdated,
		ActorID:     &actorID,
		WorkspaceID: &wsID,
		IP:          getClientIP(r),
		UserAgent:   r.UserAgent(),
		Success:     true,
		Details: map[string]string{
			"role_id":   roleID.Hex(),
			"role_name": roleName,
		},
	})
}

// RoleDeleted logs deletion of a role.
func (l *Logger) RoleDeleted(ctx context.Context, r *http.Request, actorID, roleID, wsID primitive.ObjectID, roleName string) {
	l.Log(ctx, audit.Event{
		Category:    audit.CategoryAdmin,
		EventType:   audit.EventRoleDeleted,
		ActorID:     &actorID,
		WorkspaceID: &wsID,
		IP:          getClientIP(r),
		UserAgent:   r.UserAgent(),
		Success:     true,
		Details: map[string]string{
			"role_id":   roleID.Hex(),
			"role_name": roleName,
		},
	})
}

// RoleAssigned logs assignment of a role to a member.
func (l *Logger) RoleAssigned(ctx context.Context, r *http.Request, actorID, targetUserID, roleID, wsID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:    audit.CategoryAdmin,
		EventType:   audit.EventRoleAssigned,
		ActorID:     &actorID,
		UserID:      &targetUserID,
		WorkspaceID: &wsID,
		IP:          getClientIP(r),
		UserAgent:   r.UserAgent(),
		Success:     true,
		Details: map[string]string{
			"role_id": roleID.Hex(),
		},
	})
}

// --- Security Events ---

// AccessDenied logs a denied authorization decision.
func (l *Logger) AccessDenied(ctx context.Context, r *http.Request, actorID, wsID primitive.ObjectID, resource, action, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategorySecurity,
		EventType:     audit.EventAccessDenied,
		ActorID:       &actorID,
		WorkspaceID:   &wsID,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: reason,
		Details: map[string]string{
			"resource": resource,
			"action":   action,
		},
	})
}
