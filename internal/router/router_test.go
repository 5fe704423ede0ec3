package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskboard/internal/auth"
	"github.com/monocle-dev/taskboard/internal/config"
	"github.com/monocle-dev/taskboard/internal/models"
	"github.com/monocle-dev/taskboard/internal/realtime"
	"github.com/monocle-dev/taskboard/internal/router"
	"github.com/monocle-dev/taskboard/internal/store"
	"github.com/monocle-dev/taskboard/internal/testutil"
	"github.com/monocle-dev/taskboard/internal/types"
	"gorm.io/gorm"
)

type testApp struct {
	t      *testing.T
	engine *gin.Engine
	db     *gorm.DB
	tokens *auth.TokenCodec
	svc    *auth.Service
	hub    *realtime.Hub
}

type session struct {
	id    string
	token string
}

func newApp(t *testing.T, revoke bool) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn := testutil.OpenInMemoryDB(t)

	tokens, err := auth.NewTokenCodec("test-secret", 30*24*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}

	hasher := auth.BcryptHasher{Cost: 4}
	cfg := &config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", TokenTTL: tokens.TTL(), RevokeOnLogout: revoke}}

	hub := realtime.NewHub()

	return &testApp{
		t:      t,
		engine: router.NewRouter(router.Deps{DB: conn, Tokens: tokens, Hasher: hasher, Config: cfg, Hub: hub}),
		db:     conn,
		tokens: tokens,
		svc:    auth.NewService(store.NewUserStore(conn), hasher, tokens, nil),
		hub:    hub,
	}
}

// do sends a JSON request. A non-empty token is sent as the session cookie.
func (a *testApp) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: types.SessionCookie, Value: token})
	}

	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) createUser(name, email, password string, role models.Role) *models.User {
	a.t.Helper()
	u, err := a.svc.IssueCredential(context.Background(), name, email, password, role)
	if err != nil {
		a.t.Fatalf("IssueCredential(%s): %v", email, err)
	}
	return u
}

func (a *testApp) login(email, password string) session {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	if rec.Code != http.StatusOK {
		a.t.Fatalf("login %s: status %d body %s", email, rec.Code, rec.Body)
	}
	var resp types.LoginResponse
	decode(a.t, rec, &resp)
	return session{id: resp.ID, token: resp.Token}
}

func (a *testApp) userSession(name, email string, role models.Role) session {
	a.t.Helper()
	a.createUser(name, email, "password", role)
	return a.login(email, "password")
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, want, rec.Body)
	}
}

func expectMessage(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	var body map[string]interface{}
	decode(t, rec, &body)
	if _, ok := body["message"].(string); !ok || len(body) != 1 {
		t.Fatalf("error body must be {message}: %s", rec.Body)
	}
}

func TestAdminLoginAndListUsers(t *testing.T) {
	app := newApp(t, false)

	created, err := app.svc.EnsureAdmin(context.Background(), "Admin User", "admin@example.com", "admin123")
	if err != nil || !created {
		t.Fatalf("EnsureAdmin: created=%v err=%v", created, err)
	}
	if created, _ := app.svc.EnsureAdmin(context.Background(), "Admin User", "admin@example.com", "admin123"); created {
		t.Fatalf("EnsureAdmin must be idempotent")
	}
	app.createUser("Mia Manager", "mia@example.com", "password", models.RoleManager)
	app.createUser("Uli User", "uli@example.com", "password", models.RoleUser)

	rec := app.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "admin@example.com", "password": "admin123"})
	expectStatus(t, rec, http.StatusOK)

	var login types.LoginResponse
	decode(t, rec, &login)
	if login.Role != models.RoleAdmin || login.Token == "" {
		t.Fatalf("unexpected login response: %+v", login)
	}

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == types.SessionCookie {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatalf("no session cookie set")
	}
	if !cookie.HttpOnly || cookie.SameSite != http.SameSiteStrictMode || cookie.MaxAge != 30*24*60*60 {
		t.Fatalf("unexpected cookie attributes: %+v", cookie)
	}
	if cookie.Secure {
		t.Fatalf("cookie must not be Secure outside production")
	}

	rec = app.do(http.MethodGet, "/api/users", cookie.Value, nil)
	expectStatus(t, rec, http.StatusOK)

	var users []types.UserResponse
	decode(t, rec, &users)
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}
	if strings.Contains(strings.ToLower(rec.Body.String()), "password") || strings.Contains(rec.Body.String(), "$2") {
		t.Fatalf("user list leaks password material: %s", rec.Body)
	}
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	app := newApp(t, false)

	for _, path := range []string{"/api/projects", "/api/tasks", "/api/users", "/api/auth/profile"} {
		rec := app.do(http.MethodGet, path, "", nil)
		expectStatus(t, rec, http.StatusUnauthorized)
		expectMessage(t, rec)
	}

	rec := app.do(http.MethodGet, "/api/projects", "not-a-token", nil)
	expectStatus(t, rec, http.StatusUnauthorized)
}

func TestTokenCarriers(t *testing.T) {
	app := newApp(t, false)
	s := app.userSession("Mia", "mia@example.com", models.RoleManager)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+s.token)
	rec := httptest.NewRecorder()
	app.engine.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusOK)

	// Cookie wins over the header.
	req = httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.AddCookie(&http.Cookie{Name: types.SessionCookie, Value: "garbage"})
	rec = httptest.NewRecorder()
	app.engine.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusUnauthorized)
}

func TestExpiredTokenRejected(t *testing.T) {
	app := newApp(t, false)
	u := app.createUser("Mia", "mia@example.com", "password", models.RoleManager)

	past := app.tokens.WithClock(func() time.Time { return time.Now().Add(-31 * 24 * time.Hour) })
	expired, _, err := past.Sign(u.ID)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	rec := app.do(http.MethodGet, "/api/projects", expired, nil)
	expectStatus(t, rec, http.StatusUnauthorized)

	fresh, _, err := app.tokens.Sign(u.ID)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	expectStatus(t, app.do(http.MethodGet, "/api/projects", fresh, nil), http.StatusOK)
}

func TestDeletedUserTokenRejected(t *testing.T) {
	app := newApp(t, false)
	admin := app.userSession("Ada", "ada@example.com", models.RoleAdmin)
	victim := app.userSession("Vic", "vic@example.com", models.RoleUser)

	expectStatus(t, app.do(http.MethodDelete, "/api/users/"+victim.id, admin.token, nil), http.StatusOK)
	expectStatus(t, app.do(http.MethodGet, "/api/auth/profile", victim.token, nil), http.StatusUnauthorized)
	expectStatus(t, app.do(http.MethodDelete, "/api/users/"+victim.id, admin.token, nil), http.StatusNotFound)
}

func TestLogout(t *testing.T) {
	t.Run("stateless", func(t *testing.T) {
		app := newApp(t, false)
		s := app.userSession("Mia", "mia@example.com", models.RoleManager)

		rec := app.do(http.MethodPost, "/api/auth/logout", s.token, nil)
		expectStatus(t, rec, http.StatusOK)
		if !cookieCleared(rec) {
			t.Fatalf("logout did not clear the cookie")
		}

		// Accepted limitation: the token itself stays valid.
		expectStatus(t, app.do(http.MethodGet, "/api/auth/profile", s.token, nil), http.StatusOK)
	})

	t.Run("stale token still clears cookie", func(t *testing.T) {
		app := newApp(t, true)
		u := app.createUser("Mia", "mia@example.com", "password", models.RoleManager)

		past := app.tokens.WithClock(func() time.Time { return time.Now().Add(-31 * 24 * time.Hour) })
		expired, _, err := past.Sign(u.ID)
		if err != nil {
			t.Fatalf("Sign: %v", err)
		}

		for _, token := range []string{expired, "garbage", ""} {
			rec := app.do(http.MethodPost, "/api/auth/logout", token, nil)
			expectStatus(t, rec, http.StatusOK)
			if !cookieCleared(rec) {
				t.Fatalf("logout with token %q did not clear the cookie", token)
			}
		}
	})

	t.Run("revocation enabled", func(t *testing.T) {
		app := newApp(t, true)
		s := app.userSession("Mia", "mia@example.com", models.RoleManager)

		expectStatus(t, app.do(http.MethodPost, "/api/auth/logout", s.token, nil), http.StatusOK)
		expectStatus(t, app.do(http.MethodGet, "/api/auth/profile", s.token, nil), http.StatusUnauthorized)

		again := app.login("mia@example.com", "password")
		expectStatus(t, app.do(http.MethodGet, "/api/auth/profile", again.token, nil), http.StatusOK)
	})
}

func cookieCleared(rec *httptest.ResponseRecorder) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == types.SessionCookie && c.MaxAge < 0 {
			return true
		}
	}
	return false
}

func TestRegister(t *testing.T) {
	app := newApp(t, false)
	admin := app.userSession("Ada", "ada@example.com", models.RoleAdmin)
	manager := app.userSession("Mia", "mia@example.com", models.RoleManager)

	body := map[string]string{"name": "Uli", "email": "uli@example.com", "password": "secret1"}

	rec := app.do(http.MethodPost, "/api/auth/register", manager.token, body)
	expectStatus(t, rec, http.StatusForbidden)
	expectMessage(t, rec)

	rec = app.do(http.MethodPost, "/api/auth/register", admin.token, body)
	expectStatus(t, rec, http.StatusCreated)
	if strings.Contains(strings.ToLower(rec.Body.String()), "password") || strings.Contains(rec.Body.String(), "secret1") {
		t.Fatalf("register response leaks password: %s", rec.Body)
	}

	var created types.UserResponse
	decode(t, rec, &created)
	if created.Role != models.RoleUser || created.Email != "uli@example.com" {
		t.Fatalf("unexpected profile: %+v", created)
	}

	rec = app.do(http.MethodPost, "/api/auth/register", admin.token, body)
	expectStatus(t, rec, http.StatusBadRequest)
	expectMessage(t, rec)

	body["email"] = "other@example.com"
	body["role"] = "Owner"
	expectStatus(t, app.do(http.MethodPost, "/api/auth/register", admin.token, body), http.StatusBadRequest)

	expectStatus(t, app.do(http.MethodPost, "/api/auth/register", admin.token, "{"), http.StatusBadRequest)

	// bcrypt only hashes 72 bytes; longer passwords are a validation error.
	for _, password := range []string{strings.Repeat("a", 80), strings.Repeat("é", 40)} {
		rec = app.do(http.MethodPost, "/api/auth/register", admin.token, map[string]string{
			"name": "Long", "email": "long@example.com", "password": password,
		})
		expectStatus(t, rec, http.StatusBadRequest)
		expectMessage(t, rec)
	}

	// The new account can log in.
	uli := app.login("uli@example.com", "secret1")

	rec = app.do(http.MethodGet, "/api/auth/profile", uli.token, nil)
	expectStatus(t, rec, http.StatusOK)
	if strings.Contains(strings.ToLower(rec.Body.String()), "password") {
		t.Fatalf("profile leaks password: %s", rec.Body)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	app := newApp(t, false)
	app.createUser("Mia", "mia@example.com", "password", models.RoleManager)

	unknown := app.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nobody@example.com", "password": "password"})
	wrong := app.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "mia@example.com", "password": "nope"})

	expectStatus(t, unknown, http.StatusUnauthorized)
	expectStatus(t, wrong, http.StatusUnauthorized)
	if unknown.Body.String() != wrong.Body.String() {
		t.Fatalf("responses differ: %s vs %s", unknown.Body, wrong.Body)
	}
	if len(wrong.Result().Cookies()) != 0 {
		t.Fatalf("failed login must not set a cookie")
	}
}

func TestUserManagement(t *testing.T) {
	app := newApp(t, false)
	admin := app.userSession("Ada", "ada@example.com", models.RoleAdmin)
	manager := app.userSession("Mia", "mia@example.com", models.RoleManager)
	user := app.userSession("Uli", "uli@example.com", models.RoleUser)

	expectStatus(t, app.do(http.MethodGet, "/api/users", manager.token, nil), http.StatusOK)
	expectStatus(t, app.do(http.MethodGet, "/api/users", user.token, nil), http.StatusForbidden)

	path := "/api/users/" + user.id
	expectStatus(t, app.do(http.MethodPut, path, manager.token, map[string]string{"role": "Manager"}), http.StatusForbidden)
	expectStatus(t, app.do(http.MethodPut, path, admin.token, map[string]string{"role": "Boss"}), http.StatusBadRequest)

	rec := app.do(http.MethodPut, path, admin.token, map[string]string{"role": "Manager"})
	expectStatus(t, rec, http.StatusOK)
	var updated types.UserResponse
	decode(t, rec, &updated)
	if updated.Role != models.RoleManager {
		t.Fatalf("role not updated: %+v", updated)
	}

	// Absent role leaves the user unchanged.
	rec = app.do(http.MethodPut, path, admin.token, map[string]string{})
	expectStatus(t, rec, http.StatusOK)
	decode(t, rec, &updated)
	if updated.Role != models.RoleManager {
		t.Fatalf("empty update changed role: %+v", updated)
	}

	// The promoted user now passes Manager gates.
	expectStatus(t, app.do(http.MethodGet, "/api/users", user.token, nil), http.StatusOK)

	expectStatus(t, app.do(http.MethodPut, "/api/users/00000000-0000-0000-0000-000000000000", admin.token, map[string]string{"role": "User"}), http.StatusNotFound)
	expectStatus(t, app.do(http.MethodDelete, "/api/users/not-a-uuid", admin.token, nil), http.StatusNotFound)
	expectStatus(t, app.do(http.MethodDelete, path, manager.token, nil), http.StatusForbidden)
}

func createProject(t *testing.T, app *testApp, token string, body map[string]string) types.ProjectResponse {
	t.Helper()
	rec := app.do(http.MethodPost, "/api/projects", token, body)
	expectStatus(t, rec, http.StatusCreated)
	var p types.ProjectResponse
	decode(t, rec, &p)
	return p
}

func TestProjectOwnership(t *testing.T) {
	app := newApp(t, false)
	admin := app.userSession("Ada", "ada@example.com", models.RoleAdmin)
	owner := app.userSession("Mia", "mia@example.com", models.RoleManager)
	other := app.userSession("Max", "max@example.com", models.RoleManager)
	user := app.userSession("Uli", "uli@example.com", models.RoleUser)

	p := createProject(t, app, owner.token, map[string]string{"name": "Website Redesign", "status": "Active"})
	if p.ManagerID != owner.id || p.Status != models.ProjectActive {
		t.Fatalf("unexpected project: %+v", p)
	}
	if p.Manager == nil || p.Manager.ID != owner.id || p.Manager.Name != "Mia" {
		t.Fatalf("create response manager = %+v", p.Manager)
	}

	path := "/api/projects/" + p.ID

	expectStatus(t, app.do(http.MethodGet, path, owner.token, nil), http.StatusOK)
	expectStatus(t, app.do(http.MethodGet, path, admin.token, nil), http.StatusOK)

	rec := app.do(http.MethodGet, path, other.token, nil)
	expectStatus(t, rec, http.StatusForbidden)
	expectMessage(t, rec)

	expectStatus(t, app.do(http.MethodPut, path, other.token, map[string]string{"name": "Hijacked"}), http.StatusForbidden)
	expectStatus(t, app.do(http.MethodDelete, path, other.token, nil), http.StatusForbidden)
	expectStatus(t, app.do(http.MethodPut, path, user.token, map[string]string{"name": "Hijacked"}), http.StatusForbidden)

	rec = app.do(http.MethodGet, path, owner.token, nil)
	var unchanged types.ProjectResponse
	decode(t, rec, &unchanged)
	if unchanged.Name != "Website Redesign" {
		t.Fatalf("foreign update modified project: %+v", unchanged)
	}

	expectStatus(t, app.do(http.MethodPost, "/api/projects", user.token, map[string]string{"name": "Nope"}), http.StatusForbidden)
	expectStatus(t, app.do(http.MethodPost, "/api/projects", owner.token, map[string]string{"name": "Bad", "status": "Paused"}), http.StatusBadRequest)
	expectStatus(t, app.do(http.MethodPost, "/api/projects", owner.token, map[string]string{"description": "no name"}), http.StatusBadRequest)

	// Admin-created projects are owned by the Admin.
	adminProject := createProject(t, app, admin.token, map[string]string{"name": "Internal"})
	if adminProject.ManagerID != admin.id {
		t.Fatalf("admin project owner = %q, want %q", adminProject.ManagerID, admin.id)
	}

	listIDs := func(token string) []string {
		rec := app.do(http.MethodGet, "/api/projects", token, nil)
		expectStatus(t, rec, http.StatusOK)
		var ps []types.ProjectResponse
		decode(t, rec, &ps)
		ids := make([]string, 0, len(ps))
		for _, p := range ps {
			ids = append(ids, p.ID)
		}
		return ids
	}

	if ids := listIDs(admin.token); len(ids) != 2 {
		t.Fatalf("admin sees %v, want both projects", ids)
	}

	rec = app.do(http.MethodGet, "/api/projects", admin.token, nil)
	var listed []types.ProjectResponse
	decode(t, rec, &listed)
	managers := map[string]string{}
	for _, lp := range listed {
		if lp.Manager == nil || lp.Manager.ID != lp.ManagerID {
			t.Fatalf("listed project without manager summary: %+v", lp)
		}
		managers[lp.ID] = lp.Manager.Name
	}
	if managers[p.ID] != "Mia" || managers[adminProject.ID] != "Ada" {
		t.Fatalf("manager names = %v", managers)
	}

	rec = app.do(http.MethodGet, path, owner.token, nil)
	var single types.ProjectResponse
	decode(t, rec, &single)
	if single.Manager == nil || single.Manager.Name != "Mia" {
		t.Fatalf("project detail manager = %+v", single.Manager)
	}
	if ids := listIDs(owner.token); len(ids) != 1 || ids[0] != p.ID {
		t.Fatalf("owner sees %v", ids)
	}
	if ids := listIDs(other.token); len(ids) != 0 {
		t.Fatalf("other manager sees %v", ids)
	}
	if ids := listIDs(user.token); len(ids) != 0 {
		t.Fatalf("user sees %v, want empty list", ids)
	}
	if body := app.do(http.MethodGet, "/api/projects", user.token, nil).Body.String(); strings.TrimSpace(body) != "[]" {
		t.Fatalf("user project list must be an empty array, got %s", body)
	}

	expectStatus(t, app.do(http.MethodGet, "/api/projects/00000000-0000-0000-0000-000000000000", admin.token, nil), http.StatusNotFound)
}

func TestProjectPartialUpdate(t *testing.T) {
	app := newApp(t, false)
	owner := app.userSession("Mia", "mia@example.com", models.RoleManager)
	admin := app.userSession("Ada", "ada@example.com", models.RoleAdmin)

	p := createProject(t, app, owner.token, map[string]string{"name": "Website", "description": "Old copy"})
	path := "/api/projects/" + p.ID

	rec := app.do(http.MethodPut, path, owner.token, map[string]string{"status": "Completed"})
	expectStatus(t, rec, http.StatusOK)
	var got types.ProjectResponse
	decode(t, rec, &got)
	if got.Status != models.ProjectCompleted || got.Name != "Website" || got.Description != "Old copy" {
		t.Fatalf("absent fields must be kept: %+v", got)
	}

	rec = app.do(http.MethodPut, path, admin.token, map[string]string{"description": ""})
	expectStatus(t, rec, http.StatusOK)
	decode(t, rec, &got)
	if got.Description != "" || got.Status != models.ProjectCompleted {
		t.Fatalf("explicit clear not applied: %+v", got)
	}

	expectStatus(t, app.do(http.MethodPut, path, owner.token, map[string]string{"name": ""}), http.StatusBadRequest)
	expectStatus(t, app.do(http.MethodPut, path, owner.token, map[string]string{"status": "Archived"}), http.StatusBadRequest)
}

func createTask(t *testing.T, app *testApp, token string, body map[string]interface{}) types.TaskResponse {
	t.Helper()
	rec := app.do(http.MethodPost, "/api/tasks", token, body)
	expectStatus(t, rec, http.StatusCreated)
	var task types.TaskResponse
	decode(t, rec, &task)
	return task
}

func TestTaskFieldMaskedUpdate(t *testing.T) {
	app := newApp(t, false)
	manager := app.userSession("Mia", "mia@example.com", models.RoleManager)
	assignee := app.userSession("Uli", "uli@example.com", models.RoleUser)
	bystander := app.userSession("Bea", "bea@example.com", models.RoleUser)

	p := createProject(t, app, manager.token, map[string]string{"name": "Website Redesign"})
	task := createTask(t, app, manager.token, map[string]interface{}{
		"title":      "Design Homepage",
		"projectId":  p.ID,
		"assignedTo": assignee.id,
		"dueDate":    "2030-05-01",
	})
	if task.Status != models.TaskTodo || task.AssignedTo == nil || *task.AssignedTo != assignee.id {
		t.Fatalf("unexpected task: %+v", task)
	}
	if task.DueDate == nil || *task.DueDate != "2030-05-01" {
		t.Fatalf("due date = %v, want 2030-05-01", task.DueDate)
	}

	path := "/api/tasks/" + task.ID

	rec := app.do(http.MethodPut, path, assignee.token, map[string]interface{}{
		"status":     "Done",
		"title":      "hacked",
		"assignedTo": bystander.id,
		"dueDate":    "not-a-date",
	})
	expectStatus(t, rec, http.StatusOK)

	var updated types.TaskResponse
	decode(t, rec, &updated)
	if updated.Status != models.TaskDone {
		t.Fatalf("status not applied: %+v", updated)
	}
	if updated.Title != "Design Homepage" || *updated.AssignedTo != assignee.id || *updated.DueDate != "2030-05-01" {
		t.Fatalf("non-status fields changed: %+v", updated)
	}

	expectStatus(t, app.do(http.MethodPut, path, bystander.token, map[string]string{"status": "Todo"}), http.StatusForbidden)
	expectStatus(t, app.do(http.MethodPut, path, assignee.token, map[string]string{"status": "Blocked"}), http.StatusBadRequest)

	// Managers may change everything, including clearing optional fields.
	rec = app.do(http.MethodPut, path, manager.token, map[string]interface{}{
		"title":      "Design Landing Page",
		"assignedTo": nil,
		"dueDate":    "",
	})
	expectStatus(t, rec, http.StatusOK)
	decode(t, rec, &updated)
	if updated.Title != "Design Landing Page" || updated.AssignedTo != nil || updated.DueDate != nil || updated.Status != models.TaskDone {
		t.Fatalf("manager update not applied: %+v", updated)
	}

	expectStatus(t, app.do(http.MethodPut, path, manager.token, map[string]string{"assignedTo": "00000000-0000-0000-0000-000000000000"}), http.StatusNotFound)
	expectStatus(t, app.do(http.MethodPut, "/api/tasks/00000000-0000-0000-0000-000000000000", manager.token, map[string]string{"status": "Done"}), http.StatusNotFound)
}

func TestTaskListingScope(t *testing.T) {
	app := newApp(t, false)
	admin := app.userSession("Ada", "ada@example.com", models.RoleAdmin)
	manager := app.userSession("Mia", "mia@example.com", models.RoleManager)
	uli := app.userSession("Uli", "uli@example.com", models.RoleUser)
	bea := app.userSession("Bea", "bea@example.com", models.RoleUser)

	p1 := createProject(t, app, manager.token, map[string]string{"name": "P1"})
	p2 := createProject(t, app, admin.token, map[string]string{"name": "P2"})

	createTask(t, app, manager.token, map[string]interface{}{"title": "a", "projectId": p1.ID, "assignedTo": uli.id})
	createTask(t, app, manager.token, map[string]interface{}{"title": "b", "projectId": p1.ID, "assignedTo": bea.id})
	createTask(t, app, admin.token, map[string]interface{}{"title": "c", "projectId": p2.ID, "assignedTo": uli.id})
	createTask(t, app, admin.token, map[string]interface{}{"title": "d", "projectId": p2.ID})

	list := func(token, query string) []types.TaskResponse {
		rec := app.do(http.MethodGet, "/api/tasks"+query, token, nil)
		expectStatus(t, rec, http.StatusOK)
		var tasks []types.TaskResponse
		decode(t, rec, &tasks)
		return tasks
	}

	if n := len(list(admin.token, "")); n != 4 {
		t.Fatalf("admin sees %d tasks, want 4", n)
	}
	if n := len(list(manager.token, "?projectId="+p1.ID)); n != 2 {
		t.Fatalf("manager filtered by p1 sees %d tasks, want 2", n)
	}

	mine := list(uli.token, "?projectId="+p1.ID)
	if len(mine) != 2 {
		t.Fatalf("user must see all assigned tasks regardless of project filter, got %d", len(mine))
	}
	projectNames := map[string]string{p1.ID: "P1", p2.ID: "P2"}
	for _, task := range mine {
		if task.AssignedTo == nil || *task.AssignedTo != uli.id {
			t.Fatalf("user sees a task not assigned to them: %+v", task)
		}
		if task.Assignee == nil || task.Assignee.ID != uli.id || task.Assignee.Name != "Uli" {
			t.Fatalf("assignee summary = %+v", task.Assignee)
		}
		if task.Project == nil || task.Project.ID != task.ProjectID || task.Project.Name != projectNames[task.ProjectID] {
			t.Fatalf("project summary = %+v for project %s", task.Project, task.ProjectID)
		}
	}

	for _, task := range list(admin.token, "?projectId="+p2.ID) {
		if task.Title == "d" && task.Assignee != nil {
			t.Fatalf("unassigned task has assignee summary: %+v", task.Assignee)
		}
	}
}

func TestTaskCreateAndDelete(t *testing.T) {
	app := newApp(t, false)
	manager := app.userSession("Mia", "mia@example.com", models.RoleManager)
	user := app.userSession("Uli", "uli@example.com", models.RoleUser)

	p := createProject(t, app, manager.token, map[string]string{"name": "P"})

	expectStatus(t, app.do(http.MethodPost, "/api/tasks", user.token, map[string]interface{}{"title": "x", "projectId": p.ID}), http.StatusForbidden)

	rec := app.do(http.MethodPost, "/api/tasks", manager.token, map[string]interface{}{"title": "x", "projectId": "00000000-0000-0000-0000-000000000000"})
	expectStatus(t, rec, http.StatusNotFound)
	expectMessage(t, rec)

	expectStatus(t, app.do(http.MethodPost, "/api/tasks", manager.token, map[string]interface{}{"title": "x", "projectId": p.ID, "assignedTo": "00000000-0000-0000-0000-000000000000"}), http.StatusNotFound)
	expectStatus(t, app.do(http.MethodPost, "/api/tasks", manager.token, map[string]interface{}{"title": "x", "projectId": p.ID, "status": "Later"}), http.StatusBadRequest)
	expectStatus(t, app.do(http.MethodPost, "/api/tasks", manager.token, map[string]interface{}{"title": "x", "projectId": p.ID, "dueDate": "tomorrow"}), http.StatusBadRequest)
	expectStatus(t, app.do(http.MethodPost, "/api/tasks", manager.token, map[string]interface{}{"projectId": p.ID}), http.StatusBadRequest)

	task := createTask(t, app, manager.token, map[string]interface{}{"title": "x", "projectId": p.ID, "status": "In Progress", "assignedTo": user.id})
	if task.Status != models.TaskInProgress {
		t.Fatalf("status = %q", task.Status)
	}

	path := "/api/tasks/" + task.ID
	expectStatus(t, app.do(http.MethodDelete, path, user.token, nil), http.StatusForbidden)
	expectStatus(t, app.do(http.MethodDelete, path, manager.token, nil), http.StatusOK)
	expectStatus(t, app.do(http.MethodDelete, path, manager.token, nil), http.StatusNotFound)
}

func TestProjectDeleteRemovesTasksAndMembers(t *testing.T) {
	app := newApp(t, false)
	manager := app.userSession("Mia", "mia@example.com", models.RoleManager)
	user := app.userSession("Uli", "uli@example.com", models.RoleUser)

	p := createProject(t, app, manager.token, map[string]string{"name": "P"})
	createTask(t, app, manager.token, map[string]interface{}{"title": "x", "projectId": p.ID, "assignedTo": user.id})
	expectStatus(t, app.do(http.MethodPost, "/api/projects/"+p.ID+"/members", manager.token, map[string]string{"userId": user.id}), http.StatusCreated)

	expectStatus(t, app.do(http.MethodDelete, "/api/projects/"+p.ID, manager.token, nil), http.StatusOK)
	expectStatus(t, app.do(http.MethodGet, "/api/projects/"+p.ID, manager.token, nil), http.StatusNotFound)

	var tasks, members int64
	app.db.Model(&models.Task{}).Where("project_id = ?", p.ID).Count(&tasks)
	app.db.Model(&models.ProjectMember{}).Where("project_id = ?", p.ID).Count(&members)
	if tasks != 0 || members != 0 {
		t.Fatalf("orphans left behind: tasks=%d members=%d", tasks, members)
	}
}

func TestProjectMembers(t *testing.T) {
	app := newApp(t, false)
	owner := app.userSession("Mia", "mia@example.com", models.RoleManager)
	other := app.userSession("Max", "max@example.com", models.RoleManager)
	user := app.userSession("Uli", "uli@example.com", models.RoleUser)

	p := createProject(t, app, owner.token, map[string]string{"name": "P"})
	members := "/api/projects/" + p.ID + "/members"

	expectStatus(t, app.do(http.MethodPost, members, other.token, map[string]string{"userId": user.id}), http.StatusForbidden)
	expectStatus(t, app.do(http.MethodPost, members, owner.token, map[string]string{"userId": "00000000-0000-0000-0000-000000000000"}), http.StatusNotFound)
	expectStatus(t, app.do(http.MethodPost, members, owner.token, map[string]string{"userId": user.id}), http.StatusCreated)
	expectStatus(t, app.do(http.MethodPost, members, owner.token, map[string]string{"userId": user.id}), http.StatusCreated)

	rec := app.do(http.MethodGet, members, owner.token, nil)
	expectStatus(t, rec, http.StatusOK)
	var list []types.UserResponse
	decode(t, rec, &list)
	if len(list) != 1 || list[0].ID != user.id {
		t.Fatalf("members = %+v", list)
	}

	// Membership grants nothing: the member still lists no projects.
	rec = app.do(http.MethodGet, "/api/projects", user.token, nil)
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("member user sees projects: %s", rec.Body)
	}

	expectStatus(t, app.do(http.MethodDelete, members+"/"+user.id, owner.token, nil), http.StatusOK)
	expectStatus(t, app.do(http.MethodDelete, members+"/"+user.id, owner.token, nil), http.StatusNotFound)
}

func TestHealthAndUnknownRoute(t *testing.T) {
	app := newApp(t, false)

	expectStatus(t, app.do(http.MethodGet, "/api/health", "", nil), http.StatusOK)

	rec := app.do(http.MethodGet, "/api/nope", "", nil)
	expectStatus(t, rec, http.StatusNotFound)
	expectMessage(t, rec)
}
