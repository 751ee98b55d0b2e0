package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/sainivas456/TaskFlow-sub000/internal/handlers"
	"github.com/sainivas456/TaskFlow-sub000/internal/middleware"
	"github.com/sainivas456/TaskFlow-sub000/internal/models"
	"github.com/sainivas456/TaskFlow-sub000/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "handler-test-secret"

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
}

// newTestServer builds the API router the way main does, against a sqlite
// store, without rate limiting or CORS.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{}, &models.Token{}, &models.Task{},
		&models.Label{}, &models.Subtask{}, &models.TimeEntry{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	labelSvc := services.NewLabelService()
	taskSvc := services.NewTaskService(labelSvc)
	entrySvc := services.NewTimeEntryService()
	authSvc := services.NewAuthService(testSecret, time.Hour, 24*time.Hour)
	registerSvc := services.NewRegisterService()

	r := gin.New()
	r.Use(middleware.RecoveryWithLog())

	v1 := r.Group("/api/v1")

	authHandler := handlers.NewAuthHandler(db, authSvc)
	registerHandler := handlers.NewRegisterHandler(db, registerSvc)
	v1.POST("/auth/register", registerHandler.Registration)
	v1.POST("/auth/login", authHandler.Login)
	v1.POST("/auth/refresh", authHandler.Refresh)
	v1.POST("/auth/logout", authHandler.Logout)

	protected := v1.Group("")
	protected.Use(middleware.Auth(testSecret))

	taskHandler := handlers.NewTaskHandler(db, taskSvc)
	entryHandler := handlers.NewTimeEntryHandler(db, entrySvc)
	protected.GET("/tasks", taskHandler.GetTasks)
	protected.POST("/tasks", taskHandler.CreateTask)
	protected.GET("/tasks/:id", taskHandler.GetTaskByID)
	protected.PUT("/tasks/:id", taskHandler.UpdateTask)
	protected.PUT("/tasks/:id/complete", taskHandler.CompleteTask)
	protected.DELETE("/tasks/:id", taskHandler.DeleteTask)
	protected.PUT("/tasks/:id/subtasks/:subtask_id", taskHandler.UpdateSubtask)
	protected.GET("/tasks/:id/entries", entryHandler.GetEntries)
	protected.POST("/tasks/:id/entries", entryHandler.CreateEntry)
	protected.POST("/tasks/:id/entries/start", entryHandler.StartEntry)
	protected.PUT("/entries/:id/stop", entryHandler.StopEntry)
	protected.DELETE("/entries/:id", entryHandler.DeleteEntry)

	labelHandler := handlers.NewLabelHandler(db, labelSvc)
	protected.GET("/labels", labelHandler.GetLabels)
	protected.POST("/labels", labelHandler.CreateLabel)
	protected.PUT("/labels/:id", labelHandler.UpdateLabel)
	protected.DELETE("/labels/:id", labelHandler.DeleteLabel)

	return &testServer{router: r, db: db}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// signup registers a user and returns an access token.
func (s *testServer) signup(t *testing.T, email string) string {
	t.Helper()

	w := s.do("POST", "/api/v1/auth/register", "", gin.H{
		"email":    email,
		"password": "password123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", w.Code, w.Body.String())
	}

	w = s.do("POST", "/api/v1/auth/login", "", gin.H{
		"email":    email,
		"password": "password123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", w.Code, w.Body.String())
	}

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse login response: %v", err)
	}
	return resp.AccessToken
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) models.TaskView {
	t.Helper()
	var view models.TaskView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("failed to decode task view: %v (%s)", err, w.Body.String())
	}
	return view
}

func TestTasks_RequireAuth(t *testing.T) {
	s := newTestServer(t)

	w := s.do("GET", "/api/v1/tasks", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}
}

func TestTasks_CreateAndFetch(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "alice@example.com")

	w := s.do("POST", "/api/v1/tasks", token, gin.H{
		"title":    "write report",
		"priority": 2,
		"labels":   []string{"work"},
		"subtasks": []gin.H{
			{"title": "a", "completed": false},
			{"title": "b", "completed": true},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	created := decodeView(t, w)
	if created.Progress != 50 {
		t.Errorf("expected progress 50, got %d", created.Progress)
	}
	if len(created.Labels) != 1 || created.Labels[0] != "work" {
		t.Errorf("expected labels [work], got %v", created.Labels)
	}

	w = s.do("GET", "/api/v1/tasks/"+created.ID.String(), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	fetched := decodeView(t, w)
	if fetched.Title != "write report" || len(fetched.Subtasks) != 2 {
		t.Errorf("unexpected fetched view: %+v", fetched)
	}
}

func TestTasks_ProgressLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "alice@example.com")

	w := s.do("POST", "/api/v1/tasks", token, gin.H{
		"title":  "lifecycle",
		"status": "In Progress",
		"subtasks": []gin.H{
			{"title": "a", "completed": false},
			{"title": "b", "completed": true},
		},
	})
	created := decodeView(t, w)
	if created.Progress != 50 {
		t.Fatalf("expected progress 50 after create, got %d", created.Progress)
	}

	// Toggle subtask "a" to completed.
	path := fmt.Sprintf("/api/v1/tasks/%s/subtasks/%s", created.ID, created.Subtasks[0].ID)
	w = s.do("PUT", path, token, gin.H{"completed": true})
	if w.Code != http.StatusOK {
		t.Fatalf("toggle failed: %d %s", w.Code, w.Body.String())
	}
	if v := decodeView(t, w); v.Progress != 100 {
		t.Errorf("expected progress 100 after toggle, got %d", v.Progress)
	}

	// Replace subtasks with the empty set; status stays In Progress.
	w = s.do("PUT", "/api/v1/tasks/"+created.ID.String(), token, gin.H{"subtasks": []gin.H{}})
	if w.Code != http.StatusOK {
		t.Fatalf("subtask replace failed: %d %s", w.Code, w.Body.String())
	}
	v := decodeView(t, w)
	if v.Status != models.StatusInProgress {
		t.Errorf("expected status to stay In Progress, got %q", v.Status)
	}
	if v.Progress != 50 {
		t.Errorf("expected progress 50 with no subtasks and In Progress, got %d", v.Progress)
	}
}

func TestTasks_InvalidStatusRejected(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "alice@example.com")

	w := s.do("POST", "/api/v1/tasks", token, gin.H{"title": "task"})
	created := decodeView(t, w)

	w = s.do("PUT", "/api/v1/tasks/"+created.ID.String(), token, gin.H{"status": "Done"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid status, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Message == "" {
		t.Errorf("expected a message field in the error payload, got %s", w.Body.String())
	}
}

func TestTasks_Complete(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "alice@example.com")

	w := s.do("POST", "/api/v1/tasks", token, gin.H{
		"title":    "finish me",
		"subtasks": []gin.H{{"title": "a", "completed": false}},
	})
	created := decodeView(t, w)

	w = s.do("PUT", "/api/v1/tasks/"+created.ID.String()+"/complete", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("complete failed: %d %s", w.Code, w.Body.String())
	}
	v := decodeView(t, w)
	if v.Status != models.StatusCompleted || v.Progress != 100 {
		t.Errorf("expected Completed/100, got %q/%d", v.Status, v.Progress)
	}
	if v.CompletedAt == nil {
		t.Error("expected completed_at to be set")
	}
	if !v.Subtasks[0].Completed {
		t.Error("expected subtask forced to completed")
	}
}

func TestTasks_DeleteThen404(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "alice@example.com")

	w := s.do("POST", "/api/v1/tasks", token, gin.H{"title": "doomed"})
	created := decodeView(t, w)

	w = s.do("DELETE", "/api/v1/tasks/"+created.ID.String(), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete failed: %d", w.Code)
	}

	w = s.do("GET", "/api/v1/tasks/"+created.ID.String(), token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", w.Code)
	}

	w = s.do("DELETE", "/api/v1/tasks/"+created.ID.String(), token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 deleting twice, got %d", w.Code)
	}
}

func TestTasks_ForeignUserGets404(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice@example.com")
	bob := s.signup(t, "bob@example.com")

	w := s.do("POST", "/api/v1/tasks", alice, gin.H{"title": "private"})
	created := decodeView(t, w)

	w = s.do("GET", "/api/v1/tasks/"+created.ID.String(), bob, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for foreign task, got %d", w.Code)
	}

	w = s.do("PUT", "/api/v1/tasks/"+created.ID.String(), bob, gin.H{"title": "stolen"})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 updating foreign task, got %d", w.Code)
	}
}

func TestLabels_CRUD(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "alice@example.com")

	w := s.do("POST", "/api/v1/labels", token, gin.H{"name": "work", "color": "#112233"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create label failed: %d %s", w.Code, w.Body.String())
	}
	var label models.Label
	if err := json.Unmarshal(w.Body.Bytes(), &label); err != nil {
		t.Fatalf("failed to decode label: %v", err)
	}

	w = s.do("POST", "/api/v1/labels", token, gin.H{"name": "work"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for duplicate label, got %d", w.Code)
	}

	w = s.do("PUT", "/api/v1/labels/"+label.ID.String(), token, gin.H{"color": "#AABBCC"})
	if w.Code != http.StatusOK {
		t.Errorf("update label failed: %d", w.Code)
	}

	w = s.do("DELETE", "/api/v1/labels/"+label.ID.String(), token, nil)
	if w.Code != http.StatusOK {
		t.Errorf("delete label failed: %d", w.Code)
	}

	w = s.do("GET", "/api/v1/labels", token, nil)
	var resp struct {
		Labels []models.Label `json:"labels"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode labels: %v", err)
	}
	if len(resp.Labels) != 0 {
		t.Errorf("expected no labels after delete, got %d", len(resp.Labels))
	}
}

func TestTimeEntries_StartStop(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "alice@example.com")

	w := s.do("POST", "/api/v1/tasks", token, gin.H{"title": "timed"})
	created := decodeView(t, w)

	w = s.do("POST", "/api/v1/tasks/"+created.ID.String()+"/entries/start", token, gin.H{"description": "focus"})
	if w.Code != http.StatusCreated {
		t.Fatalf("start entry failed: %d %s", w.Code, w.Body.String())
	}
	var entry models.TimeEntry
	if err := json.Unmarshal(w.Body.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode entry: %v", err)
	}
	if entry.EndedAt != nil {
		t.Error("expected running entry to have nil ended_at")
	}

	w = s.do("PUT", "/api/v1/entries/"+entry.ID.String()+"/stop", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stop entry failed: %d %s", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode stopped entry: %v", err)
	}
	if entry.EndedAt == nil {
		t.Error("expected stopped entry to have ended_at set")
	}
}

func TestAuth_RefreshFlow(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "alice@example.com")

	w := s.do("POST", "/api/v1/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "password123",
	})
	var login struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &login); err != nil {
		t.Fatalf("failed to parse login: %v", err)
	}

	w = s.do("POST", "/api/v1/auth/refresh", "", gin.H{"refresh_token": login.RefreshToken})
	if w.Code != http.StatusOK {
		t.Fatalf("refresh failed: %d %s", w.Code, w.Body.String())
	}

	// The rotated-out token is dead.
	w = s.do("POST", "/api/v1/auth/refresh", "", gin.H{"refresh_token": login.RefreshToken})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 replaying old refresh token, got %d", w.Code)
	}
}
