package handlers

import (
	"net/http"

	"task-management-api/internal/services"

	"github.com/gin-gonic/gin"
)

// SubTaskRequest carries optional subtask fields for create and patch.
type SubTaskRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Date        *string  `json:"date"`
	Stage       *string  `json:"stage"`
	Priority    *string  `json:"priority"`
	Team        []string `json:"team"`
}

func (r SubTaskRequest) input() services.SubTaskInput {
	return services.SubTaskInput{
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		Stage:       r.Stage,
		Priority:    r.Priority,
		Team:        r.Team,
	}
}

type SubTaskHandler struct {
	subtasks *services.SubTaskService
}

func NewSubTaskHandler(subtasks *services.SubTaskService) *SubTaskHandler {
	return &SubTaskHandler{subtasks: subtasks}
}

// CreateSubTask handles POST /api/tasks/:id/subtasks
func (h *SubTaskHandler) CreateSubTask(c *gin.Context) {
	var req SubTaskRequest
	// an empty body creates a subtask with every default
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	sub, err := h.subtasks.Create(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  true,
		"message": "Subtask created successfully.",
		"subTask": sub,
	})
}

// UpdateSubTask handles PUT /api/tasks/:id/subtasks/:subTaskId
func (h *SubTaskHandler) UpdateSubTask(c *gin.Context) {
	var req SubTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	sub, err := h.subtasks.Update(c.Request.Context(), c.Param("id"), c.Param("subTaskId"), req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  true,
		"message": "Subtask updated successfully.",
		"subTask": sub,
	})
}

// GetSubTask handles GET /api/tasks/:id/subtasks/:subTaskId
func (h *SubTaskHandler) GetSubTask(c *gin.Context) {
	sub, err := h.subtasks.Get(c.Request.Context(), c.Param("id"), c.Param("subTaskId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "subTask": sub})
}

// ListSubTasks handles GET /api/tasks/:id/subtasks
func (h *SubTaskHandler) ListSubTasks(c *gin.Context) {
	subs, err := h.subtasks.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "subTasks": subs})
}

// DeleteSubTask handles DELETE /api/tasks/:id/subtasks/:subTaskId
func (h *SubTaskHandler) DeleteSubTask(c *gin.Context) {
	if err := h.subtasks.Delete(c.Request.Context(), c.Param("id"), c.Param("subTaskId")); err != nil {
		writeError(c, err)
		return
	}
	respondOK(c, "Subtask deleted successfully.")
}
