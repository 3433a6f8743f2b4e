package initialize

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"task-tracker/backend/app/dto"
	"task-tracker/backend/config"
	"task-tracker/backend/global"

	"github.com/rs/zerolog"
)

type testServer struct {
	*httptest.Server
	app *App
}

func newServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()
	global.Logger = zerolog.Nop()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.DB.Driver = "sqlite"
	cfg.DB.Path = filepath.Join(t.TempDir(), "tracker.db")
	cfg.Redis.Addr = ""
	cfg.JWT.Secret = "test-secret"
	cfg.Auth.BootstrapAdmin.Password = ""
	if mutate != nil {
		mutate(cfg)
	}
	app, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	srv := httptest.NewServer(app.Router)
	t.Cleanup(func() {
		srv.Close()
		_ = app.Close()
	})
	return &testServer{Server: srv, app: app}
}

func (s *testServer) call(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.URL+path, rdr)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out
}

func (s *testServer) mustCall(t *testing.T, want int, method, path, token string, body, dst any) {
	t.Helper()
	status, out := s.call(t, method, path, token, body)
	if status != want {
		t.Fatalf("%s %s = %d %s, want %d", method, path, status, out, want)
	}
	if dst != nil {
		if err := json.Unmarshal(out, dst); err != nil {
			t.Fatalf("decode %s: %v", out, err)
		}
	}
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	var resp dto.LoginResponse
	s.mustCall(t, http.StatusOK, http.MethodPost, "/login", "", dto.LoginRequest{Username: username, Password: password}, &resp)
	if resp.Token == "" {
		t.Fatal("empty token")
	}
	return resp.Token
}

func (s *testServer) userID(t *testing.T, adminToken, username string) uint {
	t.Helper()
	var users []dto.UserResponse
	s.mustCall(t, http.StatusOK, http.MethodGet, "/users", adminToken, nil, &users)
	for _, u := range users {
		if u.Username == username {
			return u.ID
		}
	}
	t.Fatalf("user %q not listed", username)
	return 0
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	s := newServer(t, nil)
	reg := dto.RegisterRequest{Name: "Alice", Username: "alice", Password: "pw", Role: "admin"}
	var id dto.IDResponse
	s.mustCall(t, http.StatusOK, http.MethodPost, "/register", "", reg, &id)
	if id.ID == 0 {
		t.Fatal("register returned id 0")
	}
	s.mustCall(t, http.StatusConflict, http.MethodPost, "/register", "", reg, nil)
	s.mustCall(t, http.StatusBadRequest, http.MethodPost, "/register", "",
		dto.RegisterRequest{Name: "X", Username: "x", Password: "p", Role: "root"}, nil)

	var resp dto.LoginResponse
	s.mustCall(t, http.StatusOK, http.MethodPost, "/login", "", dto.LoginRequest{Username: "alice", Password: "pw"}, &resp)
	if resp.User.Name != "Alice" || resp.User.Role != "admin" {
		t.Errorf("login user = %+v", resp.User)
	}
	claims, err := s.app.Signer.Parse(resp.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Role != "admin" || claims.UserID != id.ID {
		t.Errorf("claims = %+v", claims)
	}

	s.mustCall(t, http.StatusUnauthorized, http.MethodPost, "/login", "", dto.LoginRequest{Username: "alice", Password: "nope"}, nil)
	s.mustCall(t, http.StatusBadRequest, http.MethodPost, "/login", "", dto.LoginRequest{Username: "alice"}, nil)
}

func TestTaskLifecycle(t *testing.T) {
	s := newServer(t, nil)
	s.mustCall(t, http.StatusOK, http.MethodPost, "/register", "",
		dto.RegisterRequest{Name: "Alice", Username: "alice", Password: "pw", Role: "admin"}, nil)
	admin := s.login(t, "alice", "pw")

	s.mustCall(t, http.StatusOK, http.MethodPost, "/users", admin,
		dto.RegisterRequest{Name: "Walter", Username: "walt", Password: "wpw", Role: "worker"}, nil)
	s.mustCall(t, http.StatusConflict, http.MethodPost, "/users", admin,
		dto.RegisterRequest{Name: "Walter 2", Username: "walt", Password: "x", Role: "worker"}, nil)
	wid := s.userID(t, admin, "walt")

	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format(dto.DateLayout)
	var created dto.CreateTaskResponse
	s.mustCall(t, http.StatusOK, http.MethodPost, "/tasks", admin,
		dto.CreateTaskRequest{Title: "Report", DueDate: &tomorrow, Assignees: []uint{wid}}, &created)
	if created.ID == 0 || created.Message == "" {
		t.Fatalf("create = %+v", created)
	}

	worker := s.login(t, "walt", "wpw")
	var tasks []dto.TaskResponse
	s.mustCall(t, http.StatusOK, http.MethodGet, "/tasks", worker, nil, &tasks)
	if len(tasks) != 1 || tasks[0].Title != "Report" || tasks[0].Status != "not-done" {
		t.Fatalf("worker tasks = %+v", tasks)
	}
	if tasks[0].DueDate == nil || *tasks[0].DueDate != tomorrow {
		t.Errorf("due date = %v, want %s", tasks[0].DueDate, tomorrow)
	}

	statusPath := "/tasks/" + itoa(created.ID) + "/status"
	s.mustCall(t, http.StatusOK, http.MethodPut, statusPath, worker, dto.UpdateStatusRequest{Status: "done"}, nil)
	s.mustCall(t, http.StatusOK, http.MethodPut, statusPath, worker, dto.UpdateStatusRequest{Status: "done"}, nil)
	s.mustCall(t, http.StatusForbidden, http.MethodPut, statusPath, worker, dto.UpdateStatusRequest{Status: "not-done"}, nil)
	s.mustCall(t, http.StatusBadRequest, http.MethodPut, statusPath, admin, dto.UpdateStatusRequest{Status: "finished"}, nil)
	s.mustCall(t, http.StatusNotFound, http.MethodPut, "/tasks/999/status", admin, dto.UpdateStatusRequest{Status: "done"}, nil)

	s.mustCall(t, http.StatusOK, http.MethodGet, "/tasks", admin, nil, &tasks)
	if len(tasks) != 1 || tasks[0].Status != "done" || !strings.Contains(tasks[0].Executors, "Walter") {
		t.Fatalf("admin tasks = %+v", tasks)
	}

	var pending []dto.CompletionResponse
	s.mustCall(t, http.StatusOK, http.MethodGet, "/completion-requests?status=pending", admin, nil, &pending)
	if len(pending) != 1 || pending[0].TaskID != created.ID || pending[0].UserID != wid {
		t.Fatalf("pending = %+v", pending)
	}
	s.mustCall(t, http.StatusForbidden, http.MethodGet, "/completion-requests", worker, nil, nil)
	decidePath := "/completion-requests/" + itoa(pending[0].ID)
	s.mustCall(t, http.StatusOK, http.MethodPut, decidePath, admin, dto.DecideCompletionRequest{Status: "rejected"}, nil)
	s.mustCall(t, http.StatusConflict, http.MethodPut, decidePath, admin, dto.DecideCompletionRequest{Status: "confirmed"}, nil)
	s.mustCall(t, http.StatusOK, http.MethodGet, "/tasks", worker, nil, &tasks)
	if tasks[0].Status != "not-done" {
		t.Errorf("rejected task status = %q", tasks[0].Status)
	}

	s.mustCall(t, http.StatusForbidden, http.MethodDelete, "/tasks/"+itoa(created.ID), worker, nil, nil)
	s.mustCall(t, http.StatusOK, http.MethodDelete, "/tasks/"+itoa(created.ID), admin, nil, nil)
	s.mustCall(t, http.StatusNotFound, http.MethodDelete, "/tasks/"+itoa(created.ID), admin, nil, nil)
	for _, tok := range []string{admin, worker} {
		s.mustCall(t, http.StatusOK, http.MethodGet, "/tasks", tok, nil, &tasks)
		if len(tasks) != 0 {
			t.Errorf("deleted task still listed: %+v", tasks)
		}
	}
}

func TestCreateTaskWithoutAssigneesPersistsNothing(t *testing.T) {
	s := newServer(t, nil)
	s.mustCall(t, http.StatusOK, http.MethodPost, "/register", "",
		dto.RegisterRequest{Name: "Alice", Username: "alice", Password: "pw", Role: "admin"}, nil)
	admin := s.login(t, "alice", "pw")

	s.mustCall(t, http.StatusBadRequest, http.MethodPost, "/tasks", admin,
		dto.CreateTaskRequest{Title: "Orphan", Assignees: []uint{}}, nil)
	s.mustCall(t, http.StatusBadRequest, http.MethodPost, "/tasks", admin,
		dto.CreateTaskRequest{Title: "Ghost", Assignees: []uint{4242}}, nil)

	var tasks []dto.TaskResponse
	s.mustCall(t, http.StatusOK, http.MethodGet, "/tasks", admin, nil, &tasks)
	if len(tasks) != 0 {
		t.Fatalf("tasks persisted: %+v", tasks)
	}
}

func TestWorkerCannotCreateUsers(t *testing.T) {
	s := newServer(t, nil)
	s.mustCall(t, http.StatusOK, http.MethodPost, "/register", "",
		dto.RegisterRequest{Name: "Alice", Username: "alice", Password: "pw", Role: "admin"}, nil)
	s.mustCall(t, http.StatusOK, http.MethodPost, "/register", "",
		dto.RegisterRequest{Name: "Walter", Username: "walt", Password: "wpw", Role: "worker"}, nil)
	admin := s.login(t, "alice", "pw")
	worker := s.login(t, "walt", "wpw")

	status, body := s.call(t, http.MethodPost, "/users", worker,
		dto.RegisterRequest{Name: "Eve", Username: "eve", Password: "p", Role: "admin"})
	if status != http.StatusForbidden || !strings.Contains(string(body), "access denied") {
		t.Fatalf("worker create user = %d %s", status, body)
	}
	var users []dto.UserResponse
	s.mustCall(t, http.StatusOK, http.MethodGet, "/users", admin, nil, &users)
	if len(users) != 2 {
		t.Fatalf("users = %+v", users)
	}
	var brief []dto.UserBrief
	s.mustCall(t, http.StatusOK, http.MethodGet, "/all-users", worker, nil, &brief)
	if len(brief) != 2 {
		t.Fatalf("all-users = %+v", brief)
	}
}

func TestUserAdministration(t *testing.T) {
	s := newServer(t, nil)
	s.mustCall(t, http.StatusOK, http.MethodPost, "/register", "",
		dto.RegisterRequest{Name: "Alice", Username: "alice", Password: "pw", Role: "admin"}, nil)
	s.mustCall(t, http.StatusOK, http.MethodPost, "/register", "",
		dto.RegisterRequest{Name: "Walter", Username: "walt", Password: "wpw", Role: "worker"}, nil)
	admin := s.login(t, "alice", "pw")
	wid := s.userID(t, admin, "walt")
	path := "/users/" + itoa(wid)

	s.mustCall(t, http.StatusConflict, http.MethodPut, path, admin,
		dto.UpdateUserRequest{Name: "Walter", Username: "alice", Role: "worker"}, nil)
	if s.userID(t, admin, "walt") != wid {
		t.Fatal("login changed after conflict")
	}
	s.mustCall(t, http.StatusOK, http.MethodPut, path, admin,
		dto.UpdateUserRequest{Name: "Walt W.", Username: "walt", Role: "worker"}, nil)
	s.mustCall(t, http.StatusBadRequest, http.MethodPut, path, admin,
		dto.UpdateUserRequest{Name: "Walt", Username: "walt", Role: "chief"}, nil)
	s.mustCall(t, http.StatusNotFound, http.MethodPut, "/users/999", admin,
		dto.UpdateUserRequest{Name: "N", Username: "n", Role: "worker"}, nil)
	s.mustCall(t, http.StatusBadRequest, http.MethodDelete, "/users/abc", admin, nil, nil)

	s.mustCall(t, http.StatusOK, http.MethodPost, "/tasks", admin,
		dto.CreateTaskRequest{Title: "Sweep", Assignees: []uint{wid}}, nil)
	s.mustCall(t, http.StatusOK, http.MethodDelete, path, admin, nil, nil)
	s.mustCall(t, http.StatusNotFound, http.MethodDelete, path, admin, nil, nil)

	var tasks []dto.TaskResponse
	s.mustCall(t, http.StatusOK, http.MethodGet, "/tasks", admin, nil, &tasks)
	if len(tasks) != 1 || tasks[0].Executors != "" {
		t.Fatalf("tasks after user delete = %+v", tasks)
	}
}

func TestAuthenticationFailures(t *testing.T) {
	s := newServer(t, nil)
	s.mustCall(t, http.StatusOK, http.MethodPost, "/register", "",
		dto.RegisterRequest{Name: "Alice", Username: "alice", Password: "pw", Role: "admin"}, nil)
	token := s.login(t, "alice", "pw")

	s.mustCall(t, http.StatusUnauthorized, http.MethodGet, "/tasks", "", nil, nil)
	s.mustCall(t, http.StatusForbidden, http.MethodGet, "/tasks", token+"x", nil, nil)

	s.mustCall(t, http.StatusOK, http.MethodPost, "/logout", token, nil, nil)
	s.mustCall(t, http.StatusForbidden, http.MethodGet, "/tasks", token, nil, nil)

	fresh := s.login(t, "alice", "pw")
	s.mustCall(t, http.StatusOK, http.MethodGet, "/tasks", fresh, nil, nil)
}

func TestRegistrationDisabled(t *testing.T) {
	s := newServer(t, func(c *config.Config) {
		c.Auth.OpenRegistration = false
		c.Auth.BootstrapAdmin = config.BootstrapAdmin{Name: "Root", Username: "root", Password: "toor"}
	})
	s.mustCall(t, http.StatusForbidden, http.MethodPost, "/register", "",
		dto.RegisterRequest{Name: "A", Username: "a", Password: "p", Role: "admin"}, nil)
	token := s.login(t, "root", "toor")
	s.mustCall(t, http.StatusOK, http.MethodGet, "/users", token, nil, nil)
}

func TestRouterEdges(t *testing.T) {
	s := newServer(t, nil)

	status, body := s.call(t, http.MethodGet, "/ping", "", nil)
	if status != http.StatusOK || string(body) != "pong" {
		t.Fatalf("ping = %d %q", status, body)
	}
	status, body = s.call(t, http.MethodGet, "/nope", "", nil)
	if status != http.StatusNotFound || !strings.Contains(string(body), "message") {
		t.Fatalf("unknown route = %d %s", status, body)
	}
	s.mustCall(t, http.StatusMethodNotAllowed, http.MethodPatch, "/tasks", "", nil, nil)

	req, _ := http.NewRequest(http.MethodOptions, s.URL+"/tasks", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "authorization,content-type")
	resp, err := s.Client().Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 || resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("preflight = %d %v", resp.StatusCode, resp.Header)
	}

	status, _ = s.call(t, http.MethodPost, "/login", "", nil)
	if status != http.StatusBadRequest {
		t.Fatalf("empty login body = %d", status)
	}
}

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }
