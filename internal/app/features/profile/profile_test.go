package profile_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/taskhubhq/taskhub/internal/app/features/profile"
	membershipstore "github.com/taskhubhq/taskhub/internal/app/store/memberships"
	workspacestore "github.com/taskhubhq/taskhub/internal/app/store/workspaces"
	"github.com/taskhubhq/taskhub/internal/domain/models"
	"github.com/taskhubhq/taskhub/internal/testutil"
)

func TestServe(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fx.CreateUser(ctx, "alice", "alice@example.com")
	owned := fx.CreateWorkspace(ctx, "Owned", user.ID)
	joined := fx.CreateWorkspace(ctx, "Joined", testutil.AnonymousPrincipal().ID)
	fx.CreateMembership(ctx, owned.ID, user.ID, models.CoarseRoleAdmin, nil)
	fx.CreateMembership(ctx, joined.ID, user.ID, models.CoarseRoleMember, nil)

	h := profile.NewHandler(membershipstore.New(db), workspacestore.New(db), zap.NewNop())
	req := testutil.NewAuthenticatedRequest("GET", "/profile", testutil.Principal(user))
	rec := httptest.NewRecorder()
	h.Serve(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Username   string `json:"username"`
		Email      string `json:"email"`
		Workspaces []struct {
			Name string `json:"name"`
			Role string `json:"role"`
		} `json:"workspaces"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Username != "alice" {
		t.Errorf("username: got %q", resp.Username)
	}
	if len(resp.Workspaces) != 2 {
		t.Fatalf("workspaces: got %d, want 2", len(resp.Workspaces))
	}
	roleByName := map[string]string{}
	for _, ws := range resp.Workspaces {
		roleByName[ws.Name] = ws.Role
	}
	if roleByName["Owned"] != models.CoarseRoleAdmin {
		t.Errorf("Owned role: got %q", roleByName["Owned"])
	}
	if roleByName["Joined"] != models.CoarseRoleMember {
		t.Errorf("Joined role: got %q", roleByName["Joined"])
	}
}

func TestServe_Unauthenticated(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := profile.NewHandler(membershipstore.New(db), workspacestore.New(db), zap.NewNop())

	req := httptest.NewRequest("GET", "/profile", nil)
	rec := httptest.NewRecorder()
	h.Serve(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestServe_NoWorkspaces(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fx.CreateUser(ctx, "loner", "loner@example.com")
	h := profile.NewHandler(membershipstore.New(db), workspacestore.New(db), zap.NewNop())
	req := testutil.NewAuthenticatedRequest("GET", "/profile", testutil.Principal(user))
	rec := httptest.NewRecorder()
	h.Serve(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var resp struct {
		Workspaces []any `json:"workspaces"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(resp.Workspaces) != 0 {
		t.Errorf("workspaces: got %d, want 0", len(resp.Workspaces))
	}
}
