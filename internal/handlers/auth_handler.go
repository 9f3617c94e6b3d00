package handlers

import (
	"net/http"

	"task-management-api/internal/auth"
	"task-management-api/internal/middleware"
	"task-management-api/internal/models"
	"task-management-api/internal/services"
	"task-management-api/internal/session"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// RegisterRequest represents the registration payload
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	IsAdmin  bool   `json:"isAdmin"`
	Role     string `json:"role"`
	Title    string `json:"title"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the login response. The token itself only
// travels in the httpOnly cookie.
type LoginResponse struct {
	Status  bool         `json:"status"`
	User    *models.User `json:"user"`
	Message string       `json:"message"`
}

// AuthHandler serves registration, login and logout.
type AuthHandler struct {
	users        *services.UserService
	tokens       *auth.TokenManager
	denylist     session.Denylist
	secureCookie bool
}

func NewAuthHandler(users *services.UserService, tokens *auth.TokenManager, denylist session.Denylist, secureCookie bool) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, denylist: denylist, secureCookie: secureCookie}
}

// Register handles POST /api/users/register. Only an authenticated admin
// may create another admin; public sign-ups are always plain members.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Name, a valid email and password are required.")
		return
	}
	if req.IsAdmin && !c.GetBool(middleware.ContextIsAdmin) {
		log.WithField("email", req.Email).Warn("admin flag dropped from non-admin registration")
		req.IsAdmin = false
	}

	user, err := h.users.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		IsAdmin:  req.IsAdmin,
		Role:     req.Role,
		Title:    req.Title,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login handles POST /api/users/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request. Email and password are required.")
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	token, err := h.tokens.GenerateToken(user.ID, user.IsAdmin)
	if err != nil {
		writeError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.TokenCookie, token, int(h.tokens.TTL().Seconds()), "/", "", h.secureCookie, true)

	c.JSON(http.StatusOK, LoginResponse{
		Status:  true,
		User:    user,
		Message: "Login successful",
	})
}

// Logout handles POST /api/users/logout. The current token is revoked for
// the rest of its lifetime and the cookie cleared.
func (h *AuthHandler) Logout(c *gin.Context) {
	if tokenID := c.GetString(middleware.ContextTokenID); tokenID != "" && h.denylist != nil {
		if err := h.denylist.Revoke(c.Request.Context(), tokenID, middleware.TokenRemaining(c)); err != nil {
			writeError(c, err)
			return
		}
		log.WithField("user", c.GetString(middleware.ContextUserID)).Debug("token revoked")
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"status": true, "message": "Logout successful"})
}
