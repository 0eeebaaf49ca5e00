package taskstore_test

import (
	"errors"
	"testing"

	taskstore "github.com/taskhubhq/taskhub/internal/app/store/tasks"
	"github.com/taskhubhq/taskhub/internal/app/system/authz"
	"github.com/taskhubhq/taskhub/internal/domain/models"
	"github.com/taskhubhq/taskhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Task{
		WorkspaceID: primitive.NewObjectID(),
		ProjectID:   primitive.NewObjectID(),
		Name:        "Write release notes",
		Status:      models.StatusTodo,
		UserID:      primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}

	found, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if found.Name != "Write release notes" {
		t.Errorf("Name: got %q", found.Name)
	}
	if found.Status != models.StatusTodo {
		t.Errorf("Status: got %q, want %q", found.Status, models.StatusTodo)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, primitive.NewObjectID())
	if !errors.Is(err, taskstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Apply(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Task{
		WorkspaceID: primitive.NewObjectID(),
		ProjectID:   primitive.NewObjectID(),
		Name:        "Initial",
		Status:      models.StatusBacklog,
		UserID:      primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	newStatus := models.StatusDoing
	assignee := primitive.NewObjectID()
	name := "Renamed"
	if err := store.Apply(ctx, created.ID, taskstore.Update{
		Name:       &name,
		Status:     &newStatus,
		AssignedID: &assignee,
	}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	found, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if found.Name != "Renamed" {
		t.Errorf("Name: got %q", found.Name)
	}
	if found.Status != models.StatusDoing {
		t.Errorf("Status: got %q", found.Status)
	}
	if found.AssignedID != assignee {
		t.Errorf("AssignedID: got %v, want %v", found.AssignedID, assignee)
	}

	// A nil-field update leaves everything else alone.
	desc := "added later"
	if err := store.Apply(ctx, created.ID, taskstore.Update{Description: &desc}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	found, err = store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if found.Name != "Renamed" || found.Status != models.StatusDoing {
		t.Errorf("partial update clobbered other fields: %+v", found)
	}
	if found.Description != "added later" {
		t.Errorf("Description: got %q", found.Description)
	}
}

func TestStore_ListByWorkspace_PermissionFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	wsID := primitive.NewObjectID()
	projectID := primitive.NewObjectID()
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	fx.CreateTask(ctx, wsID, projectID, alice, "Alice task", models.StatusTodo)
	fx.CreateTask(ctx, wsID, projectID, bob, "Bob task", models.StatusTodo)
	fx.CreateTask(ctx, wsID, projectID, bob, "Bob done task", models.StatusDone)
	// A task in another workspace must never leak in.
	fx.CreateTask(ctx, primitive.NewObjectID(), projectID, alice, "Foreign task", models.StatusTodo)

	all, err := store.ListByWorkspace(ctx, wsID, authz.MatchAll(), taskstore.ListOptions{})
	if err != nil {
		t.Fatalf("ListByWorkspace failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("unrestricted: got %d tasks, want 3", len(all))
	}

	owned, err := store.ListByWorkspace(ctx, wsID,
		authz.MatchAll().And(authz.FieldOwner, authz.OpEq, alice),
		taskstore.ListOptions{})
	if err != nil {
		t.Fatalf("ListByWorkspace failed: %v", err)
	}
	if len(owned) != 1 || owned[0].Name != "Alice task" {
		t.Errorf("owner-filtered: got %+v", owned)
	}

	byStatus, err := store.ListByWorkspace(ctx, wsID,
		authz.MatchAll().And(authz.FieldStatus, authz.OpIn, []models.TaskStatus{models.StatusDone}),
		taskstore.ListOptions{})
	if err != nil {
		t.Fatalf("ListByWorkspace failed: %v", err)
	}
	if len(byStatus) != 1 || byStatus[0].Status != models.StatusDone {
		t.Errorf("status-filtered: got %+v", byStatus)
	}

	none, err := store.ListByWorkspace(ctx, wsID, authz.MatchNone(), taskstore.ListOptions{})
	if err != nil {
		t.Fatalf("ListByWorkspace failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("MatchNone: got %d tasks, want 0", len(none))
	}
}

func TestStore_ListByWorkspace_OptionsIntersectPermissionFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	wsID := primitive.NewObjectID()
	projectID := primitive.NewObjectID()
	alice := primitive.NewObjectID()

	fx.CreateTask(ctx, wsID, projectID, alice, "Open item", models.StatusTodo)
	fx.CreateTask(ctx, wsID, projectID, alice, "Shipped item", models.StatusDone)

	doneOnly := authz.MatchAll().And(authz.FieldStatus, authz.OpIn, []models.TaskStatus{models.StatusDone})

	// A caller restricted to Done asking for ?status=Todo gets nothing;
	// the permission predicate must not replace the requested one.
	got, err := store.ListByWorkspace(ctx, wsID, doneOnly,
		taskstore.ListOptions{Status: models.StatusTodo})
	if err != nil {
		t.Fatalf("ListByWorkspace failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("conflicting status filters: got %d tasks, want 0: %+v", len(got), got)
	}

	// Agreeing predicates still match.
	got, err = store.ListByWorkspace(ctx, wsID, doneOnly,
		taskstore.ListOptions{Status: models.StatusDone})
	if err != nil {
		t.Fatalf("ListByWorkspace failed: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Shipped item" {
		t.Errorf("agreeing status filters: got %+v", got)
	}

	// Same for an assignee narrowing colliding with an assignment condition.
	bob := primitive.NewObjectID()
	assignedFilter := authz.MatchAll().And(authz.FieldAssignee, authz.OpEq, alice)
	got, err = store.ListByWorkspace(ctx, wsID, assignedFilter,
		taskstore.ListOptions{AssignedID: bob})
	if err != nil {
		t.Fatalf("ListByWorkspace failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("conflicting assignee filters: got %d tasks, want 0", len(got))
	}
}

func TestStore_ListByWorkspace_Options(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	wsID := primitive.NewObjectID()
	projA := primitive.NewObjectID()
	projB := primitive.NewObjectID()
	owner := primitive.NewObjectID()

	fx.CreateTask(ctx, wsID, projA, owner, "Fix login flow", models.StatusTodo)
	fx.CreateTask(ctx, wsID, projA, owner, "Polish dashboard", models.StatusDoing)
	fx.CreateTask(ctx, wsID, projB, owner, "Fix signup flow", models.StatusTodo)

	byProject, err := store.ListByWorkspace(ctx, wsID, authz.MatchAll(),
		taskstore.ListOptions{ProjectID: projA})
	if err != nil {
		t.Fatalf("ListByWorkspace failed: %v", err)
	}
	if len(byProject) != 2 {
		t.Errorf("project filter: got %d tasks, want 2", len(byProject))
	}

	byStatus, err := store.ListByWorkspace(ctx, wsID, authz.MatchAll(),
		taskstore.ListOptions{Status: models.StatusDoing})
	if err != nil {
		t.Fatalf("ListByWorkspace failed: %v", err)
	}
	if len(byStatus) != 1 || byStatus[0].Name != "Polish dashboard" {
		t.Errorf("status filter: got %+v", byStatus)
	}

	bySearch, err := store.ListByWorkspace(ctx, wsID, authz.MatchAll(),
		taskstore.ListOptions{Search: "fix"})
	if err != nil {
		t.Fatalf("ListByWorkspace failed: %v", err)
	}
	if len(bySearch) != 2 {
		t.Errorf("search filter: got %d tasks, want 2", len(bySearch))
	}
}

func TestStore_DeleteByProject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	wsID := primitive.NewObjectID()
	projectID := primitive.NewObjectID()
	owner := primitive.NewObjectID()

	fx.CreateTask(ctx, wsID, projectID, owner, "One", models.StatusTodo)
	fx.CreateTask(ctx, wsID, projectID, owner, "Two", models.StatusTodo)
	fx.CreateTask(ctx, wsID, primitive.NewObjectID(), owner, "Other project", models.StatusTodo)

	n, err := store.DeleteByProject(ctx, projectID)
	if err != nil {
		t.Fatalf("DeleteByProject failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted count: got %d, want 2", n)
	}

	remaining, err := store.ListByWorkspace(ctx, wsID, authz.MatchAll(), taskstore.ListOptions{})
	if err != nil {
		t.Fatalf("ListByWorkspace failed: %v", err)
	}
	if len(remaining) != 1 {
		t.Errorf("remaining tasks: got %d, want 1", len(remaining))
	}
}
