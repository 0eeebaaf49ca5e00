// internal/app/system/provision/provision.go

// Package provision creates a workspace together with its seeded system
// roles and the creator's admin membership. The three writes span three
// collections, so they run inside a Mongo transaction when the deployment
// supports one; on standalone servers they run sequentially with
// compensating deletes on failure so a half-created workspace never
// survives.
package provision

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/taskhubhq/taskhub/internal/app/system/txn"
	"github.com/taskhubhq/taskhub/internal/domain/models"
)

// WorkspaceStore is the slice of the workspace store provisioning needs.
type WorkspaceStore interface {
	Create(ctx context.Context, ws models.Workspace) (models.Workspace, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

// MembershipStore is the slice of the membership store provisioning needs.
type MembershipStore interface {
	Create(ctx context.Context, m models.Membership) (models.Membership, error)
	DeleteByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) (int64, error)
}

// RoleStore is the slice of the role store provisioning needs.
type RoleStore interface {
	SeedSystemRoles(ctx context.Context, workspaceID, createdBy primitive.ObjectID) (admin, member models.Role, err error)
	DeleteByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) (int64, error)
}

// Provisioner creates fully formed workspaces.
type Provisioner struct {
	client      *mongo.Client
	workspaces  WorkspaceStore
	memberships MembershipStore
	roles       RoleStore
	log         *zap.Logger
}

// New returns a Provisioner over the given stores. client may be nil in
// tests; transactions are then skipped and the fallback path is used.
func New(client *mongo.Client, ws WorkspaceStore, ms MembershipStore, rs RoleStore, log *zap.Logger) *Provisioner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Provisioner{
		client:      client,
		workspaces:  ws,
		memberships: ms,
		roles:       rs,
		log:         log,
	}
}

// Workspace creates a workspace named name owned by ownerID, seeds the
// Admin and Member system roles, and makes the owner an admin member
// pre-assigned the Admin role, the same way invite joins pre-assign
// Member. The returned workspace includes its generated invite code.
func (p *Provisioner) Workspace(ctx context.Context, name string, ownerID primitive.ObjectID) (models.Workspace, error) {
	var ws models.Workspace

	if p.client != nil {
		err := txn.Run(ctx, p.client, func(tc context.Context) error {
			var terr error
			ws, terr = p.createAll(tc, name, ownerID)
			return terr
		})
		if err == nil {
			return ws, nil
		}
		if !txn.IsNotSupported(err) {
			return models.Workspace{}, err
		}
		p.log.Debug("transactions unavailable, provisioning with compensation",
			zap.String("workspace_name", name))
	}

	return p.workspaceCompensated(ctx, name, ownerID)
}

// createAll performs the three writes with no cleanup. Callers provide
// atomicity (a transaction) or compensation. Roles are seeded before the
// membership so the membership can reference the Admin role.
func (p *Provisioner) createAll(ctx context.Context, name string, ownerID primitive.ObjectID) (models.Workspace, error) {
	ws, err := p.workspaces.Create(ctx, models.Workspace{
		Name:    name,
		OwnerID: ownerID,
	})
	if err != nil {
		return models.Workspace{}, fmt.Errorf("create workspace: %w", err)
	}

	admin, _, err := p.roles.SeedSystemRoles(ctx, ws.ID, ownerID)
	if err != nil {
		return models.Workspace{}, fmt.Errorf("seed system roles: %w", err)
	}

	_, err = p.memberships.Create(ctx, models.Membership{
		WorkspaceID: ws.ID,
		UserID:      ownerID,
		Role:        models.CoarseRoleAdmin,
		RoleID:      &admin.ID,
	})
	if err != nil {
		return models.Workspace{}, fmt.Errorf("create owner membership: %w", err)
	}

	return ws, nil
}

// workspaceCompensated runs the writes sequentially and deletes whatever
// was created if a later step fails.
func (p *Provisioner) workspaceCompensated(ctx context.Context, name string, ownerID primitive.ObjectID) (models.Workspace, error) {
	ws, err := p.workspaces.Create(ctx, models.Workspace{
		Name:    name,
		OwnerID: ownerID,
	})
	if err != nil {
		return models.Workspace{}, fmt.Errorf("create workspace: %w", err)
	}

	admin, _, err := p.roles.SeedSystemRoles(ctx, ws.ID, ownerID)
	if err != nil {
		p.rollback(ctx, ws.ID)
		return models.Workspace{}, fmt.Errorf("seed system roles: %w", err)
	}

	_, err = p.memberships.Create(ctx, models.Membership{
		WorkspaceID: ws.ID,
		UserID:      ownerID,
		Role:        models.CoarseRoleAdmin,
		RoleID:      &admin.ID,
	})
	if err != nil {
		p.rollback(ctx, ws.ID)
		return models.Workspace{}, fmt.Errorf("create owner membership: %w", err)
	}

	return ws, nil
}

// rollback removes the partial workspace. Failures are logged, not
// returned; the original error is what the caller needs to see.
func (p *Provisioner) rollback(ctx context.Context, wsID primitive.ObjectID) {
	if _, err := p.roles.DeleteByWorkspace(ctx, wsID); err != nil {
		p.log.Warn("provision rollback: delete roles", zap.Error(err), zap.String("workspace_id", wsID.Hex()))
	}
	if _, err := p.memberships.DeleteByWorkspace(ctx, wsID); err != nil {
		p.log.Warn("provision rollback: delete memberships", zap.Error(err), zap.String("workspace_id", wsID.Hex()))
	}
	if _, err := p.workspaces.Delete(ctx, wsID); err != nil {
		p.log.Warn("provision rollback: delete workspace", zap.Error(err), zap.String("workspace_id", wsID.Hex()))
	}
}
