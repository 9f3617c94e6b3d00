package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"task-management-api/internal/auth"
	"task-management-api/internal/middleware"
	"task-management-api/internal/models"
	"task-management-api/internal/services"
	"task-management-api/internal/session"
	"task-management-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	t        *testing.T
	db       *gorm.DB
	tokens   *auth.TokenManager
	users    *services.UserService
	denylist *session.MemoryDenylist
	router   *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustDB(t)
	tokens := auth.NewTokenManager("test-secret", "task-management-api", "task-management-clients", time.Hour)
	users := services.NewUserService(db, auth.NewBcryptHasher(bcrypt.MinCost))
	denylist := session.NewMemoryDenylist()

	taskHandler := NewTaskHandler(services.NewTaskService(db, nil), services.NewDashboardService(db))
	subTaskHandler := NewSubTaskHandler(services.NewSubTaskService(db))
	userHandler := NewUserHandler(users, services.NewNoticeService(db))
	authHandler := NewAuthHandler(users, tokens, denylist, false)

	r := gin.New()
	r.POST("/api/users/register", middleware.OptionalAuth(tokens, denylist), middleware.ActiveAccount(users), authHandler.Register)
	r.POST("/api/users/login", authHandler.Login)

	api := r.Group("/api", middleware.JWTAuthMiddleware(tokens, denylist), middleware.ActiveAccount(users))
	api.POST("/tasks", taskHandler.CreateTask)
	api.GET("/tasks", taskHandler.GetTasks)
	api.DELETE("/tasks", taskHandler.DeleteRestoreTask)
	api.GET("/tasks/dashboard", taskHandler.DashboardStatistics)
	api.GET("/tasks/:id", taskHandler.GetTask)
	api.PUT("/tasks/:id", taskHandler.UpdateTask)
	api.DELETE("/tasks/:id", taskHandler.DeleteRestoreTask)
	api.PUT("/tasks/:id/trash", taskHandler.TrashTask)
	api.POST("/tasks/:id/duplicate", taskHandler.DuplicateTask)
	api.POST("/tasks/:id/activity", taskHandler.PostTaskActivity)
	api.POST("/tasks/:id/subtasks", subTaskHandler.CreateSubTask)
	api.GET("/tasks/:id/subtasks", subTaskHandler.ListSubTasks)
	api.GET("/tasks/:id/subtasks/:subTaskId", subTaskHandler.GetSubTask)
	api.PUT("/tasks/:id/subtasks/:subTaskId", subTaskHandler.UpdateSubTask)
	api.DELETE("/tasks/:id/subtasks/:subTaskId", subTaskHandler.DeleteSubTask)
	api.POST("/users/logout", authHandler.Logout)
	api.GET("/users/get-team", userHandler.GetTeamList)
	api.GET("/users/notifications", userHandler.GetNotificationsList)
	api.PUT("/users/read-noti", userHandler.MarkNotificationRead)
	api.PUT("/users/profile", userHandler.UpdateUserProfile)
	api.PUT("/users/change-password", userHandler.ChangeUserPassword)
	api.PUT("/users/:id", middleware.AdminOnly(), userHandler.ActivateUserProfile)
	api.DELETE("/users/:id", middleware.AdminOnly(), userHandler.DeleteUserProfile)

	return &testEnv{t: t, db: db, tokens: tokens, users: users, denylist: denylist, router: r}
}

// seed creates a user and returns it with a valid bearer token.
func (e *testEnv) seed(name string, admin bool) (models.User, string) {
	e.t.Helper()
	u := testutil.SeedUser(e.t, e.db, name)
	if admin {
		require.NoError(e.t, e.db.Model(&u).Update("is_admin", true).Error)
		u.IsAdmin = true
	}
	token, err := e.tokens.GenerateToken(u.ID, admin)
	require.NoError(e.t, err)
	return u, token
}

func (e *testEnv) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// login signs in through the API and returns the token from the auth cookie.
func (e *testEnv) login(email, password string) string {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/users/login", map[string]any{"email": email, "password": password}, "")
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.TokenCookie {
			return c.Value
		}
	}
	e.t.Fatal("login did not set the auth cookie")
	return ""
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type taskEnvelope struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Task    models.Task `json:"task"`
}

type messageEnvelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

func (e *testEnv) createTask(token string, team []string, title string) models.Task {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/tasks", map[string]any{
		"title":    title,
		"team":     team,
		"stage":    "todo",
		"date":     "2024-01-01",
		"priority": "normal",
	}, token)
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	return decode[taskEnvelope](e.t, w).Task
}
