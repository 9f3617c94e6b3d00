package handlers

import (
	"net/http"

	"task-management-api/internal/middleware"
	"task-management-api/internal/services"

	"github.com/gin-gonic/gin"
)

// UpdateProfileRequest changes profile fields; admins may name another user.
type UpdateProfileRequest struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Title  string `json:"title"`
	Role   string `json:"role"`
}

type ChangePasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// UserHandler serves account and notification endpoints.
type UserHandler struct {
	users   *services.UserService
	notices *services.NoticeService
}

func NewUserHandler(users *services.UserService, notices *services.NoticeService) *UserHandler {
	return &UserHandler{users: users, notices: notices}
}

// GetTeamList handles GET /api/users/get-team
func (h *UserHandler) GetTeamList(c *gin.Context) {
	users, err := h.users.ListTeam(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetNotificationsList handles GET /api/users/notifications
func (h *UserHandler) GetNotificationsList(c *gin.Context) {
	notices, err := h.notices.ListUnread(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, notices)
}

// MarkNotificationRead handles PUT /api/users/read-noti?isReadType=&id=
func (h *UserHandler) MarkNotificationRead(c *gin.Context) {
	err := h.notices.MarkRead(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Query("isReadType"), c.Query("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respondOK(c, "Done")
}

// UpdateUserProfile handles PUT /api/users/profile
func (h *UserHandler) UpdateUserProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	target := c.GetString(middleware.ContextUserID)
	if req.UserID != "" && req.UserID != target {
		if !c.GetBool(middleware.ContextIsAdmin) {
			c.JSON(http.StatusUnauthorized, gin.H{"status": false, "message": "Not authorized as admin. Try login as admin."})
			return
		}
		target = req.UserID
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), target, services.ProfileInput{
		Name:  req.Name,
		Title: req.Title,
		Role:  req.Role,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  true,
		"message": "Profile updated successfully.",
		"user":    user,
	})
}

// ChangeUserPassword handles PUT /api/users/change-password
func (h *UserHandler) ChangeUserPassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Password is required.")
		return
	}
	if err := h.users.ChangePassword(c.Request.Context(), c.GetString(middleware.ContextUserID), req.Password); err != nil {
		writeError(c, err)
		return
	}
	respondOK(c, "Password changed successfully.")
}

// ActivateUserProfile handles PUT /api/users/:id
func (h *UserHandler) ActivateUserProfile(c *gin.Context) {
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "isActive is required.")
		return
	}
	if err := h.users.SetActive(c.Request.Context(), c.Param("id"), *req.IsActive); err != nil {
		writeError(c, err)
		return
	}
	state := "disabled"
	if *req.IsActive {
		state = "activated"
	}
	respondOK(c, "User account has been "+state)
}

// DeleteUserProfile handles DELETE /api/users/:id
func (h *UserHandler) DeleteUserProfile(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	respondOK(c, "User deleted successfully")
}
