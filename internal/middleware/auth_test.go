package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"task-management-api/internal/auth"
	"task-management-api/internal/models"
	"task-management-api/internal/services"
	"task-management-api/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var testTokens = auth.NewTokenManager("test-secret", "task-management-api", "task-management-clients", time.Hour)

func newProtectedRouter(denylist session.Denylist, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuthMiddleware(testTokens, denylist))
	handlers := append(extra, func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextUserID)) })
	r.GET("/protected", handlers...)
	return r
}

func TestJWTAuthMiddleware_Success(t *testing.T) {
	r := newProtectedRouter(session.NewMemoryDenylist())

	token, err := testTokens.GenerateToken("user-1", false)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "user-1", w.Body.String())
}

func TestJWTAuthMiddleware_Cookie(t *testing.T) {
	r := newProtectedRouter(nil)

	token, err := testTokens.GenerateToken("user-2", false)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "user-2", w.Body.String())
}

func TestJWTAuthMiddleware_MissingToken(t *testing.T) {
	r := newProtectedRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_RevokedToken(t *testing.T) {
	denylist := session.NewMemoryDenylist()
	r := newProtectedRouter(denylist)

	token, err := testTokens.GenerateToken("user-1", false)
	require.NoError(t, err)
	claims, err := testTokens.ValidateToken(token)
	require.NoError(t, err)
	require.NoError(t, denylist.Revoke(context.Background(), claims.ID, time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/protected?token="+token, nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminOnly(t *testing.T) {
	r := newProtectedRouter(nil, AdminOnly())

	userToken, _ := testTokens.GenerateToken("user-1", false)
	adminToken, _ := testTokens.GenerateToken("admin-1", true)

	for _, tc := range []struct {
		token string
		want  int
	}{
		{userToken, http.StatusUnauthorized},
		{adminToken, http.StatusOK},
	} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+tc.token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, tc.want, w.Code)
	}
}

type fakeAccounts map[string]*models.User

func (f fakeAccounts) Get(_ context.Context, id string) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, &services.Error{Kind: services.ErrNotFound, Message: "User not found"}
}

func TestActiveAccount_UsesStoredState(t *testing.T) {
	accounts := fakeAccounts{
		"active":   {ID: "active", IsActive: true},
		"disabled": {ID: "disabled", IsActive: false},
		"demoted":  {ID: "demoted", IsActive: true, IsAdmin: false},
	}
	r := newProtectedRouter(nil, ActiveAccount(accounts), AdminOnly())

	for _, tc := range []struct {
		user  string
		admin bool
		want  int
	}{
		{"active", false, http.StatusUnauthorized},
		{"disabled", false, http.StatusUnauthorized},
		{"demoted", true, http.StatusUnauthorized},
		{"gone", true, http.StatusUnauthorized},
	} {
		token, err := testTokens.GenerateToken(tc.user, tc.admin)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, tc.want, w.Code, tc.user)
	}

	accounts["promoted"] = &models.User{ID: "promoted", IsActive: true, IsAdmin: true}
	token, err := testTokens.GenerateToken("promoted", false)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestOptionalAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(OptionalAuth(testTokens, nil))
	r.GET("/open", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": c.GetString(ContextUserID), "admin": c.GetBool(ContextIsAdmin)})
	})

	adminToken, err := testTokens.GenerateToken("admin-1", true)
	require.NoError(t, err)

	for _, tc := range []struct {
		header string
		want   string
	}{
		{"", `{"admin":false,"user":""}`},
		{"Bearer not-a-jwt", `{"admin":false,"user":""}`},
		{"Bearer " + adminToken, `{"admin":true,"user":"admin-1"}`},
	} {
		req := httptest.NewRequest(http.MethodGet, "/open", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, tc.want, w.Body.String())
	}
}
