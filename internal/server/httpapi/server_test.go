package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/tasklist/internal/common"
	"github.com/dmitrijs2005/tasklist/internal/dbx"
	"github.com/dmitrijs2005/tasklist/internal/logging"
	"github.com/dmitrijs2005/tasklist/internal/server/auth"
	"github.com/dmitrijs2005/tasklist/internal/server/config"
	"github.com/dmitrijs2005/tasklist/internal/server/models"
	refreshtokensrepo "github.com/dmitrijs2005/tasklist/internal/server/repositories/refreshtokens"
	tasklistsrepo "github.com/dmitrijs2005/tasklist/internal/server/repositories/tasklists"
	tasksrepo "github.com/dmitrijs2005/tasklist/internal/server/repositories/tasks"
	usersrepo "github.com/dmitrijs2005/tasklist/internal/server/repositories/users"
	"github.com/dmitrijs2005/tasklist/internal/server/services"
	"golang.org/x/crypto/bcrypt"
)

// In-memory repositories backing the route tests. The real services run on
// top of them, so status-code mapping is exercised end to end.

type memUsersRepo struct {
	users  map[string]*models.User
	nextID int
}

func (m *memUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	m.nextID++
	c := *u
	c.ID = fmt.Sprintf("u%d", m.nextID)
	c.CreatedAt = time.Now()
	m.users[c.ID] = &c
	return &c, nil
}

func (m *memUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *memUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, common.ErrNotFound
}

func (m *memUsersRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	return err == nil, nil
}

type memRefreshRepo struct {
	tokens map[string]*models.RefreshToken
}

func (m *memRefreshRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	m.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (m *memRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	t, ok := m.tokens[token]
	if !ok || t.Revoked {
		return nil, common.ErrNotFound
	}
	c := *t
	return &c, nil
}

func (m *memRefreshRepo) Revoke(ctx context.Context, token string) error {
	if t, ok := m.tokens[token]; ok {
		t.Revoked = true
	}
	return nil
}

type memTasksRepo struct {
	tasks  map[string]*models.Task
	nextID int
}

func (m *memTasksRepo) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	m.nextID++
	c := *task
	c.ID = fmt.Sprintf("t%d", m.nextID)
	m.tasks[c.ID] = &c
	return &c, nil
}

func (m *memTasksRepo) GetByID(ctx context.Context, id string) (*models.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *t
	return &c, nil
}

func (m *memTasksRepo) SelectByUser(ctx context.Context, userID string) ([]*models.Task, error) {
	var out []*models.Task
	for _, t := range m.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTasksRepo) SelectByUserAndList(ctx context.Context, userID, listName string) ([]*models.Task, error) {
	var out []*models.Task
	for _, t := range m.tasks {
		if t.UserID == userID && t.ListName == listName {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTasksRepo) SelectByUserAndCompleted(ctx context.Context, userID string, completed bool) ([]*models.Task, error) {
	var out []*models.Task
	for _, t := range m.tasks {
		if t.UserID == userID && t.Completed == completed {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTasksRepo) ListNames(ctx context.Context, userID string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, t := range m.tasks {
		if t.UserID == userID && !seen[t.ListName] {
			seen[t.ListName] = true
			out = append(out, t.ListName)
		}
	}
	return out, nil
}

func (m *memTasksRepo) ExistsByUserListTitle(ctx context.Context, userID, listName, title string) (bool, error) {
	for _, t := range m.tasks {
		if t.UserID == userID && t.ListName == listName && t.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (m *memTasksRepo) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	if _, ok := m.tasks[task.ID]; !ok {
		return nil, common.ErrNotFound
	}
	c := *task
	m.tasks[c.ID] = &c
	return &c, nil
}

func (m *memTasksRepo) Delete(ctx context.Context, id string) error {
	delete(m.tasks, id)
	return nil
}

type memTaskListsRepo struct {
	lists  map[string]*models.TaskList
	nextID int
}

func (m *memTaskListsRepo) Create(ctx context.Context, list *models.TaskList) (*models.TaskList, error) {
	m.nextID++
	c := *list
	c.ID = fmt.Sprintf("l%d", m.nextID)
	m.lists[c.ID] = &c
	return &c, nil
}

func (m *memTaskListsRepo) GetByID(ctx context.Context, id string) (*models.TaskList, error) {
	l, ok := m.lists[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *l
	return &c, nil
}

func (m *memTaskListsRepo) SelectByUser(ctx context.Context, userID string) ([]*models.TaskList, error) {
	var out []*models.TaskList
	for _, l := range m.lists {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memTaskListsRepo) Update(ctx context.Context, list *models.TaskList) (*models.TaskList, error) {
	if _, ok := m.lists[list.ID]; !ok {
		return nil, common.ErrNotFound
	}
	c := *list
	m.lists[c.ID] = &c
	return &c, nil
}

func (m *memTaskListsRepo) Delete(ctx context.Context, id string) error {
	delete(m.lists, id)
	return nil
}

type memRepoManager struct {
	users     *memUsersRepo
	refresh   *memRefreshRepo
	tasks     *memTasksRepo
	taskLists *memTaskListsRepo
}

func newMemRepoManager() *memRepoManager {
	return &memRepoManager{
		users:     &memUsersRepo{users: map[string]*models.User{}},
		refresh:   &memRefreshRepo{tokens: map[string]*models.RefreshToken{}},
		tasks:     &memTasksRepo{tasks: map[string]*models.Task{}},
		taskLists: &memTaskListsRepo{lists: map[string]*models.TaskList{}},
	}
}

func (m *memRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.users }
func (m *memRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository {
	return m.refresh
}
func (m *memRepoManager) Tasks(db dbx.DBTX) tasksrepo.Repository         { return m.tasks }
func (m *memRepoManager) TaskLists(db dbx.DBTX) tasklistsrepo.Repository { return m.taskLists }

type testServer struct {
	handler http.Handler
	codec   *auth.Codec
	rm      *memRepoManager
	mock    sqlmock.Sqlmock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		SecretKey:                    "test-secret",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
		BcryptCost:                   bcrypt.MinCost,
	}
	codec := auth.NewCodec([]byte(cfg.SecretKey), cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration)
	rm := newMemRepoManager()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := NewHTTPServer("127.0.0.1:0", logger, codec,
		services.NewAuthService(db, rm, codec, cfg),
		services.NewTaskService(db, rm),
		services.NewTaskListService(db, rm))

	return &testServer{handler: srv.routes(), codec: codec, rm: rm, mock: mock}
}

// seedUser inserts an account directly and returns its ID with a valid
// access token.
func (ts *testServer) seedUser(t *testing.T, name, email, password string) (string, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt error: %v", err)
	}
	u, err := ts.rm.users.Create(context.Background(), &models.User{
		Name: name, Email: email, PasswordHash: string(hash), Active: true,
	})
	if err != nil {
		t.Fatalf("seed user error: %v", err)
	}
	tok, err := ts.codec.IssueAccessToken(u.ID)
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}
	return u.ID, tok
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body error: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response error: %v (body %q)", err, w.Body.String())
	}
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestRegisterLoginFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.mock.ExpectBegin()
	ts.mock.ExpectCommit()

	w := ts.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Alice", "email": "alice@x.com", "password": "secret1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %q", w.Code, w.Body.String())
	}
	reg := decodeBody[authResponse](t, w)
	if reg.AccessToken == "" || reg.RefreshToken == "" || reg.TokenType != "Bearer" {
		t.Fatalf("unexpected register response: %+v", reg)
	}
	if reg.User.Email != "alice@x.com" {
		t.Fatalf("unexpected user: %+v", reg.User)
	}

	// the freshly minted access token works on a protected route
	w = ts.do(t, http.MethodGet, "/api/v1/tasks", reg.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("tasks status = %d, body %q", w.Code, w.Body.String())
	}

	// duplicate email
	w = ts.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Alice2", "email": "alice@x.com", "password": "other",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate register status = %d, want 409", w.Code)
	}

	// login with the registered credentials
	w = ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "alice@x.com", "password": "secret1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %q", w.Code, w.Body.String())
	}

	// wrong password
	w = ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "alice@x.com", "password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d, want 401", w.Code)
	}
}

func TestRefreshAndLogout(t *testing.T) {
	ts := newTestServer(t)
	userID, _ := ts.seedUser(t, "Alice", "alice@x.com", "secret1")

	if err := ts.rm.refresh.Create(context.Background(), userID, "refresh-xyz", time.Hour); err != nil {
		t.Fatalf("seed refresh token error: %v", err)
	}

	w := ts.do(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": "refresh-xyz"})
	if w.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, body %q", w.Code, w.Body.String())
	}
	resp := decodeBody[map[string]string](t, w)
	if resp["access_token"] == "" || resp["token_type"] != "Bearer" {
		t.Fatalf("unexpected refresh response: %v", resp)
	}
	if resp["refresh_token"] != "" {
		t.Fatalf("refresh must not rotate the refresh token")
	}

	// logout revokes; a second logout still returns 200
	for i := 0; i < 2; i++ {
		w = ts.do(t, http.MethodPost, "/api/v1/auth/logout", "", map[string]string{"refresh_token": "refresh-xyz"})
		if w.Code != http.StatusOK {
			t.Fatalf("logout #%d status = %d", i+1, w.Code)
		}
	}

	// the revoked token no longer refreshes
	w = ts.do(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": "refresh-xyz"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("refresh after logout status = %d, want 401", w.Code)
	}

	// unknown tokens look the same as revoked ones
	w = ts.do(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": "never-existed"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown refresh status = %d, want 401", w.Code)
	}
}

func TestRefresh_Expired(t *testing.T) {
	ts := newTestServer(t)
	userID, _ := ts.seedUser(t, "Alice", "alice@x.com", "secret1")

	if err := ts.rm.refresh.Create(context.Background(), userID, "stale", -time.Minute); err != nil {
		t.Fatalf("seed refresh token error: %v", err)
	}

	w := ts.do(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": "stale"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expired refresh status = %d, want 401", w.Code)
	}
}

func TestCurrentUser(t *testing.T) {
	ts := newTestServer(t)
	userID, token := ts.seedUser(t, "Alice", "alice@x.com", "secret1")

	w := ts.do(t, http.MethodGet, "/api/v1/auth/current-user", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("current-user status = %d, body %q", w.Code, w.Body.String())
	}
	user := decodeBody[userResponse](t, w)
	if user.ID != userID || user.Email != "alice@x.com" {
		t.Fatalf("unexpected user: %+v", user)
	}

	w = ts.do(t, http.MethodGet, "/api/v1/auth/current-user", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous current-user status = %d, want 401", w.Code)
	}
}

func TestProtectedRoutes_RequireAccessToken(t *testing.T) {
	ts := newTestServer(t)
	userID, _ := ts.seedUser(t, "Alice", "alice@x.com", "secret1")

	w := ts.do(t, http.MethodGet, "/api/v1/tasks", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token status = %d, want 401", w.Code)
	}

	w = ts.do(t, http.MethodGet, "/api/v1/tasks", "not-a-jwt", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token status = %d, want 401", w.Code)
	}

	// a signed refresh-kind token must not open protected routes
	refreshJWT, err := ts.codec.IssueRefreshToken(userID)
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}
	w = ts.do(t, http.MethodGet, "/api/v1/tasks", refreshJWT, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("refresh-kind token status = %d, want 401", w.Code)
	}
}

func TestTaskRoutes(t *testing.T) {
	ts := newTestServer(t)
	_, aliceTok := ts.seedUser(t, "Alice", "alice@x.com", "secret1")
	_, bobTok := ts.seedUser(t, "Bob", "bob@x.com", "secret2")

	// create
	w := ts.do(t, http.MethodPost, "/api/v1/tasks", aliceTok, map[string]string{
		"list_name": "inbox", "title": "buy milk", "description": "2l",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %q", w.Code, w.Body.String())
	}
	created := decodeBody[taskResponse](t, w)
	if created.ID == "" || created.Title != "buy milk" {
		t.Fatalf("unexpected task: %+v", created)
	}

	// duplicate title in the same list
	w = ts.do(t, http.MethodPost, "/api/v1/tasks", aliceTok, map[string]string{
		"list_name": "inbox", "title": "buy milk",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate create status = %d, want 409", w.Code)
	}

	// missing required fields
	w = ts.do(t, http.MethodPost, "/api/v1/tasks", aliceTok, map[string]string{"title": "no list"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad create status = %d, want 400", w.Code)
	}

	// owner reads it back
	w = ts.do(t, http.MethodGet, "/api/v1/tasks/"+created.ID, aliceTok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}

	// another user is forbidden, on reads and writes alike
	w = ts.do(t, http.MethodGet, "/api/v1/tasks/"+created.ID, bobTok, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("cross-tenant get status = %d, want 403", w.Code)
	}
	w = ts.do(t, http.MethodPut, "/api/v1/tasks/"+created.ID, bobTok, map[string]string{
		"list_name": "inbox", "title": "pwned",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("cross-tenant update status = %d, want 403", w.Code)
	}
	w = ts.do(t, http.MethodDelete, "/api/v1/tasks/"+created.ID, bobTok, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("cross-tenant delete status = %d, want 403", w.Code)
	}

	// toggle completion
	w = ts.do(t, http.MethodPatch, "/api/v1/tasks/"+created.ID+"/toggle", aliceTok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle status = %d", w.Code)
	}
	toggled := decodeBody[taskResponse](t, w)
	if !toggled.Completed {
		t.Fatalf("expected completed after toggle: %+v", toggled)
	}

	// filters
	w = ts.do(t, http.MethodGet, "/api/v1/tasks/completed", aliceTok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("completed status = %d", w.Code)
	}
	completed := decodeBody[[]taskResponse](t, w)
	if len(completed) != 1 {
		t.Fatalf("expected 1 completed task, got %d", len(completed))
	}
	w = ts.do(t, http.MethodGet, "/api/v1/tasks/pending", aliceTok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("pending status = %d", w.Code)
	}
	pending := decodeBody[[]taskResponse](t, w)
	if len(pending) != 0 {
		t.Fatalf("expected 0 pending tasks, got %d", len(pending))
	}
	w = ts.do(t, http.MethodGet, "/api/v1/tasks/list/inbox", aliceTok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("by-list status = %d", w.Code)
	}
	w = ts.do(t, http.MethodGet, "/api/v1/tasks/lists", aliceTok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list names status = %d", w.Code)
	}
	names := decodeBody[[]string](t, w)
	if len(names) != 1 || names[0] != "inbox" {
		t.Fatalf("unexpected list names: %v", names)
	}

	// bob's listing does not see alice's tasks
	w = ts.do(t, http.MethodGet, "/api/v1/tasks", bobTok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("bob tasks status = %d", w.Code)
	}
	bobTasks := decodeBody[[]taskResponse](t, w)
	if len(bobTasks) != 0 {
		t.Fatalf("foreign tasks leaked: %+v", bobTasks)
	}

	// delete
	w = ts.do(t, http.MethodDelete, "/api/v1/tasks/"+created.ID, aliceTok, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", w.Code)
	}
	w = ts.do(t, http.MethodGet, "/api/v1/tasks/"+created.ID, aliceTok, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", w.Code)
	}
}

func TestTaskListRoutes(t *testing.T) {
	ts := newTestServer(t)
	_, aliceTok := ts.seedUser(t, "Alice", "alice@x.com", "secret1")
	_, bobTok := ts.seedUser(t, "Bob", "bob@x.com", "secret2")

	w := ts.do(t, http.MethodPost, "/api/v1/tasklists", aliceTok, map[string]string{"name": "groceries"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %q", w.Code, w.Body.String())
	}
	created := decodeBody[taskListResponse](t, w)
	if created.ID == "" || created.Name != "groceries" {
		t.Fatalf("unexpected list: %+v", created)
	}

	w = ts.do(t, http.MethodGet, "/api/v1/tasklists/"+created.ID, bobTok, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("cross-tenant get status = %d, want 403", w.Code)
	}

	w = ts.do(t, http.MethodPut, "/api/v1/tasklists/"+created.ID, aliceTok, map[string]string{"name": "errands"})
	if w.Code != http.StatusOK {
		t.Fatalf("rename status = %d", w.Code)
	}
	renamed := decodeBody[taskListResponse](t, w)
	if renamed.Name != "errands" {
		t.Fatalf("unexpected list after rename: %+v", renamed)
	}

	w = ts.do(t, http.MethodGet, "/api/v1/tasklists", aliceTok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	lists := decodeBody[[]taskListResponse](t, w)
	if len(lists) != 1 {
		t.Fatalf("expected 1 list, got %d", len(lists))
	}

	w = ts.do(t, http.MethodDelete, "/api/v1/tasklists/"+created.ID, aliceTok, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", w.Code)
	}
}
