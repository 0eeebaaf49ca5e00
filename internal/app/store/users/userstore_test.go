package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/taskhubhq/taskhub/internal/app/store/users"
	"github.com/taskhubhq/taskhub/internal/domain/models"
	"github.com/taskhubhq/taskhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{Username: "Alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.UsernameCI != "alice" {
		t.Errorf("UsernameCI: got %q, want %q", created.UsernameCI, "alice")
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.User{Username: "alice", Email: "alice@example.com"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err := store.Create(ctx, models.User{Username: "alice2", Email: "alice@example.com"})
	if !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, primitive.NewObjectID())
	if !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_EnsureBootstrapAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	first, err := store.EnsureBootstrapAdmin(ctx, "admin", "admin@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("EnsureBootstrapAdmin failed: %v", err)
	}
	if first.PasswordHash == "" {
		t.Error("expected a password hash to be stored")
	}
	if first.PasswordHash == "s3cret-pass" {
		t.Error("password must not be stored in the clear")
	}
	if !userstore.VerifyPassword(first, "s3cret-pass") {
		t.Error("VerifyPassword rejected the bootstrap password")
	}
	if userstore.VerifyPassword(first, "wrong") {
		t.Error("VerifyPassword accepted a wrong password")
	}

	// A second call must return the existing account unchanged, even with
	// a different password.
	second, err := store.EnsureBootstrapAdmin(ctx, "admin", "admin@example.com", "different")
	if err != nil {
		t.Fatalf("second EnsureBootstrapAdmin failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("ID changed across calls: %v vs %v", second.ID, first.ID)
	}
	if !userstore.VerifyPassword(second, "s3cret-pass") {
		t.Error("existing account's password was overwritten")
	}
}

func TestStore_ListByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, err := store.Create(ctx, models.User{Username: "alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, models.User{Username: "bob", Email: "bob@example.com"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.ListByIDs(ctx, []primitive.ObjectID{a.ID})
	if err != nil {
		t.Fatalf("ListByIDs failed: %v", err)
	}
	if len(got) != 1 || got[0].Username != "alice" {
		t.Errorf("unexpected result: %+v", got)
	}
}
