package roles_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/taskhubhq/taskhub/internal/app/features/roles"
	"github.com/taskhubhq/taskhub/internal/app/store/audit"
	membershipstore "github.com/taskhubhq/taskhub/internal/app/store/memberships"
	rolestore "github.com/taskhubhq/taskhub/internal/app/store/roles"
	"github.com/taskhubhq/taskhub/internal/app/system/auditlog"
	"github.com/taskhubhq/taskhub/internal/app/system/auth"
	"github.com/taskhubhq/taskhub/internal/app/system/authz"
	"github.com/taskhubhq/taskhub/internal/domain/models"
	"github.com/taskhubhq/taskhub/internal/testutil"
)

func newTestRouter(t *testing.T, db *mongo.Database) chi.Router {
	t.Helper()
	logger := zap.NewNop()
	engine := authz.New(membershipstore.New(db), rolestore.New(db))
	auditLogger := auditlog.New(audit.New(db), logger, auditlog.Config{Admin: "db"})
	h := roles.NewHandler(db, engine, auditLogger, logger)
	r := chi.NewRouter()
	r.Route("/workspaces/{workspaceID}", func(wr chi.Router) {
		wr.Mount("/roles", roles.Routes(h))
	})
	return r
}

func do(t *testing.T, router http.Handler, method, target, body string, p *auth.Principal) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req = testutil.WithPrincipal(req, p)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func errMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse error body %q: %v", rec.Body.String(), err)
	}
	return body.Message
}

const reviewerPayload = `{
	"name": "Reviewer",
	"description": "Reviews finished work",
	"permissions": [
		{
			"resource": "tasks",
			"actions": {"create": false, "read": true, "update": true, "delete": false},
			"conditions": {"own": false, "assigned": false, "status": ["Doing", "Done"]}
		}
	]
}`

func TestHandleCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := newTestRouter(t, db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "alice", "alice@example.com")
	ws := fx.CreateWorkspace(ctx, "Acme", admin.ID)
	fx.CreateMembership(ctx, ws.ID, admin.ID, models.CoarseRoleAdmin, nil)

	rec := do(t, router, "POST", "/workspaces/"+ws.ID.Hex()+"/roles", reviewerPayload, testutil.Principal(admin))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}

	var created models.Role
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to parse role: %v", err)
	}
	if created.Name != "Reviewer" {
		t.Errorf("Name: got %q", created.Name)
	}
	if created.IsSystemRole {
		t.Error("user-created role must not be a system role")
	}
	perm, ok := created.PermissionFor(models.ResourceTasks)
	if !ok {
		t.Fatal("tasks permission missing")
	}
	if len(perm.Conditions.Status) != 2 {
		t.Errorf("status conditions: got %v", perm.Conditions.Status)
	}
}

func TestHandleCreate_AdminOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := newTestRouter(t, db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := fx.CreateUser(ctx, "bob", "bob@example.com")
	ws := fx.CreateWorkspace(ctx, "Acme", member.ID)
	fx.CreateMembership(ctx, ws.ID, member.ID, models.CoarseRoleMember, nil)

	rec := do(t, router, "POST", "/workspaces/"+ws.ID.Hex()+"/roles", reviewerPayload, testutil.Principal(member))
	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestHandleCreate_InvalidPermissionInput(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := newTestRouter(t, db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "alice", "alice@example.com")
	ws := fx.CreateWorkspace(ctx, "Acme", admin.ID)
	fx.CreateMembership(ctx, ws.ID, admin.ID, models.CoarseRoleAdmin, nil)

	tests := []struct {
		name string
		body string
	}{
		{"unknown resource", `{"name":"X","permissions":[{"resource":"secrets","actions":{"read":true}}]}`},
		{"unknown status", `{"name":"X","permissions":[{"resource":"tasks","actions":{"read":true},"conditions":{"status":["Shipped"]}}]}`},
		{"missing name", `{"permissions":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, "POST", "/workspaces/"+ws.ID.Hex()+"/roles", tt.body, testutil.Principal(admin))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want %d (body %s)", rec.Code, http.StatusBadRequest, rec.Body.String())
			}
		})
	}
}

func TestHandleCreate_DuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := newTestRouter(t, db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "alice", "alice@example.com")
	ws := fx.CreateWorkspace(ctx, "Acme", admin.ID)
	fx.CreateMembership(ctx, ws.ID, admin.ID, models.CoarseRoleAdmin, nil)
	fx.CreateRole(ctx, ws.ID, "Reviewer", nil)

	rec := do(t, router, "POST", "/workspaces/"+ws.ID.Hex()+"/roles", reviewerPayload, testutil.Principal(admin))
	if rec.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusConflict)
	}
	if got := errMessage(t, rec); got != "DuplicateRoleName" {
		t.Errorf("message: got %q, want %q", got, "DuplicateRoleName")
	}
}

func TestSystemRoleImmutableOverHTTP(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := newTestRouter(t, db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "alice", "alice@example.com")
	ws := fx.CreateWorkspace(ctx, "Acme", admin.ID)
	fx.CreateMembership(ctx, ws.ID, admin.ID, models.CoarseRoleAdmin, nil)
	sysAdmin, _, err := rolestore.New(db).SeedSystemRoles(ctx, ws.ID, admin.ID)
	if err != nil {
		t.Fatalf("SeedSystemRoles failed: %v", err)
	}

	base := "/workspaces/" + ws.ID.Hex() + "/roles/" + sysAdmin.ID.Hex()

	patch := do(t, router, "PATCH", base, `{"name":"Hijacked"}`, testutil.Principal(admin))
	if patch.Code != http.StatusForbidden {
		t.Fatalf("update status: got %d, want %d", patch.Code, http.StatusForbidden)
	}
	if got := errMessage(t, patch); got != "SystemRoleImmutable" {
		t.Errorf("update message: got %q", got)
	}

	del := do(t, router, "DELETE", base, "", testutil.Principal(admin))
	if del.Code != http.StatusForbidden {
		t.Fatalf("delete status: got %d, want %d", del.Code, http.StatusForbidden)
	}
	if got := errMessage(t, del); got != "SystemRoleImmutable" {
		t.Errorf("delete message: got %q", got)
	}
}

func TestServeView_CrossWorkspaceRoleIs404(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := newTestRouter(t, db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "alice", "alice@example.com")
	ws := fx.CreateWorkspace(ctx, "Acme", admin.ID)
	fx.CreateMembership(ctx, ws.ID, admin.ID, models.CoarseRoleAdmin, nil)
	foreign := fx.CreateRole(ctx, primitive.NewObjectID(), "Elsewhere", nil)

	rec := do(t, router, "GET", "/workspaces/"+ws.ID.Hex()+"/roles/"+foreign.ID.Hex(), "", testutil.Principal(admin))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleAssign(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := newTestRouter(t, db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "alice", "alice@example.com")
	member := fx.CreateUser(ctx, "bob", "bob@example.com")
	ws := fx.CreateWorkspace(ctx, "Acme", admin.ID)
	fx.CreateMembership(ctx, ws.ID, admin.ID, models.CoarseRoleAdmin, nil)
	m := fx.CreateMembership(ctx, ws.ID, member.ID, models.CoarseRoleMember, nil)
	role := fx.CreateRole(ctx, ws.ID, "Reviewer", nil)

	body := `{"member_id":"` + m.ID.Hex() + `"}`
	rec := do(t, router, "POST", "/workspaces/"+ws.ID.Hex()+"/roles/"+role.ID.Hex()+"/assign", body, testutil.Principal(admin))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}

	var updated models.Membership
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("failed to parse membership: %v", err)
	}
	if updated.RoleID == nil || *updated.RoleID != role.ID {
		t.Errorf("RoleID: got %v, want %v", updated.RoleID, role.ID)
	}
	if updated.Role != models.CoarseRoleMember {
		t.Errorf("coarse role must not change, got %q", updated.Role)
	}
}

func TestHandleAssign_MemberFromOtherWorkspace(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := newTestRouter(t, db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "alice", "alice@example.com")
	outsider := fx.CreateUser(ctx, "eve", "eve@example.com")
	ws := fx.CreateWorkspace(ctx, "Acme", admin.ID)
	otherWS := fx.CreateWorkspace(ctx, "Other", outsider.ID)
	fx.CreateMembership(ctx, ws.ID, admin.ID, models.CoarseRoleAdmin, nil)
	foreignMembership := fx.CreateMembership(ctx, otherWS.ID, outsider.ID, models.CoarseRoleMember, nil)
	role := fx.CreateRole(ctx, ws.ID, "Reviewer", nil)

	body := `{"member_id":"` + foreignMembership.ID.Hex() + `"}`
	rec := do(t, router, "POST", "/workspaces/"+ws.ID.Hex()+"/roles/"+role.ID.Hex()+"/assign", body, testutil.Principal(admin))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}
