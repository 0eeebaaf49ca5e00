package rolestore_test

import (
	"errors"
	"testing"

	rolestore "github.com/taskhubhq/taskhub/internal/app/store/roles"
	"github.com/taskhubhq/taskhub/internal/app/system/authz"
	"github.com/taskhubhq/taskhub/internal/domain/models"
	"github.com/taskhubhq/taskhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := rolestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	r := models.Role{
		WorkspaceID: primitive.NewObjectID(),
		Name:        "Reviewer",
		Permissions: []models.Permission{
			{
				Resource: models.ResourceTasks,
				Actions:  models.Actions{Read: true, Update: true},
				Conditions: models.Conditions{
					Status: []models.TaskStatus{models.StatusDoing, models.StatusDone},
				},
			},
		},
		CreatedBy: primitive.NewObjectID(),
	}

	created, err := store.Create(ctx, r)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.NameCI != "reviewer" {
		t.Errorf("NameCI: got %q, want %q", created.NameCI, "reviewer")
	}
}

func TestStore_Create_DuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := rolestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	wsID := primitive.NewObjectID()
	if _, err := store.Create(ctx, models.Role{WorkspaceID: wsID, Name: "Reviewer"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	// Name matching is case-insensitive within the workspace.
	_, err := store.Create(ctx, models.Role{WorkspaceID: wsID, Name: "REVIEWER"})
	if !errors.Is(err, rolestore.ErrDuplicateRoleName) {
		t.Errorf("expected ErrDuplicateRoleName, got %v", err)
	}

	// The same name in a different workspace is allowed.
	if _, err := store.Create(ctx, models.Role{WorkspaceID: primitive.NewObjectID(), Name: "Reviewer"}); err != nil {
		t.Errorf("Create in different workspace failed: %v", err)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := rolestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, primitive.NewObjectID())
	if !errors.Is(err, authz.ErrRoleNotFound) {
		t.Errorf("expected authz.ErrRoleNotFound, got %v", err)
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := rolestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Role{
		WorkspaceID: primitive.NewObjectID(),
		Name:        "Reviewer",
		Description: "Reviews finished work",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	perms := []models.Permission{
		{Resource: models.ResourceProjects, Actions: models.Actions{Read: true}},
	}
	if err := store.Update(ctx, created.ID, "Auditor", "Looks but does not touch", perms); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	found, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if found.Name != "Auditor" {
		t.Errorf("Name: got %q, want %q", found.Name, "Auditor")
	}
	if found.NameCI != "auditor" {
		t.Errorf("NameCI: got %q, want %q", found.NameCI, "auditor")
	}
	if len(found.Permissions) != 1 || found.Permissions[0].Resource != models.ResourceProjects {
		t.Errorf("Permissions not replaced: %+v", found.Permissions)
	}
}

func TestStore_Update_NilPermissionsKeepsExisting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := rolestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Role{
		WorkspaceID: primitive.NewObjectID(),
		Name:        "Reviewer",
		Permissions: []models.Permission{
			{Resource: models.ResourceTasks, Actions: models.Actions{Read: true}},
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Update(ctx, created.ID, "", "new description", nil); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	found, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if found.Name != "Reviewer" {
		t.Errorf("Name changed unexpectedly: got %q", found.Name)
	}
	if len(found.Permissions) != 1 {
		t.Errorf("Permissions: got %d entries, want 1", len(found.Permissions))
	}
	if found.Description != "new description" {
		t.Errorf("Description: got %q", found.Description)
	}
}

func TestStore_SeedSystemRoles(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := rolestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	wsID := primitive.NewObjectID()
	admin, member, err := store.SeedSystemRoles(ctx, wsID, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("SeedSystemRoles failed: %v", err)
	}

	if !admin.IsSystemRole || !member.IsSystemRole {
		t.Error("expected both seeded roles to be system roles")
	}
	if len(admin.Permissions) != len(models.AllResources) {
		t.Errorf("admin permissions: got %d, want %d", len(admin.Permissions), len(models.AllResources))
	}
	for _, p := range admin.Permissions {
		if !p.Actions.Create || !p.Actions.Read || !p.Actions.Update || !p.Actions.Delete {
			t.Errorf("admin permission on %s not full: %+v", p.Resource, p.Actions)
		}
	}

	taskPerm, ok := member.PermissionFor(models.ResourceTasks)
	if !ok {
		t.Fatal("member role missing tasks permission")
	}
	if taskPerm.Actions.Delete {
		t.Error("member role must not delete tasks")
	}
	if !taskPerm.Conditions.Own {
		t.Errorf("member task conditions: %+v", taskPerm.Conditions)
	}
	// Conditions are conjunctive; own+assigned would restrict members to
	// tasks they both created and hold, so the seed must not pair them.
	if taskPerm.Conditions.Assigned {
		t.Error("member task permission must not also require assignment")
	}
}

func TestStore_SystemRolesImmutable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := rolestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin, member, err := store.SeedSystemRoles(ctx, primitive.NewObjectID(), primitive.NewObjectID())
	if err != nil {
		t.Fatalf("SeedSystemRoles failed: %v", err)
	}

	if err := store.Update(ctx, admin.ID, "Hijacked", "", nil); !errors.Is(err, rolestore.ErrSystemRole) {
		t.Errorf("Update system role: expected ErrSystemRole, got %v", err)
	}
	if err := store.Delete(ctx, member.ID); !errors.Is(err, rolestore.ErrSystemRole) {
		t.Errorf("Delete system role: expected ErrSystemRole, got %v", err)
	}
}

func TestStore_GetSystemRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := rolestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	wsID := primitive.NewObjectID()
	if _, _, err := store.SeedSystemRoles(ctx, wsID, primitive.NewObjectID()); err != nil {
		t.Fatalf("SeedSystemRoles failed: %v", err)
	}

	// A user-created role with the same name in another workspace must not
	// shadow the lookup.
	if _, err := store.Create(ctx, models.Role{WorkspaceID: primitive.NewObjectID(), Name: models.SystemRoleMember}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	member, err := store.GetSystemRole(ctx, wsID, models.SystemRoleMember)
	if err != nil {
		t.Fatalf("GetSystemRole failed: %v", err)
	}
	if member.WorkspaceID != wsID {
		t.Errorf("WorkspaceID: got %v, want %v", member.WorkspaceID, wsID)
	}
	if !member.IsSystemRole {
		t.Error("expected a system role")
	}

	_, err = store.GetSystemRole(ctx, primitive.NewObjectID(), models.SystemRoleMember)
	if !errors.Is(err, authz.ErrRoleNotFound) {
		t.Errorf("expected authz.ErrRoleNotFound in foreign workspace, got %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := rolestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Role{WorkspaceID: primitive.NewObjectID(), Name: "Temp"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.GetByID(ctx, created.ID); !errors.Is(err, authz.ErrRoleNotFound) {
		t.Errorf("expected authz.ErrRoleNotFound after delete, got %v", err)
	}
}
