package handlers

import (
	"net/http"
	"strconv"

	"task-management-api/internal/middleware"
	"task-management-api/internal/models"
	"task-management-api/internal/services"

	"github.com/gin-gonic/gin"
)

// CreateTaskRequest represents the request payload for creating a task
type CreateTaskRequest struct {
	Title    string   `json:"title"`
	Team     []string `json:"team"`
	Stage    string   `json:"stage"`
	Date     string   `json:"date"`
	Priority string   `json:"priority"`
	Assets   []string `json:"assets"`
	UserID   string   `json:"userId"`
}

// UpdateTaskRequest represents the full-overwrite payload of a task.
// Every field must be present.
type UpdateTaskRequest struct {
	Title    *string  `json:"title"`
	Date     *string  `json:"date"`
	Team     []string `json:"team"`
	Stage    *string  `json:"stage"`
	Priority *string  `json:"priority"`
}

// PostActivityRequest represents an activity entry posted on a task
type PostActivityRequest struct {
	UserID   string `json:"userId"`
	Type     string `json:"type"`
	Activity string `json:"activity"`
}

// TaskHandler serves the task lifecycle and dashboard endpoints.
type TaskHandler struct {
	tasks     *services.TaskService
	dashboard *services.DashboardService
}

func NewTaskHandler(tasks *services.TaskService, dashboard *services.DashboardService) *TaskHandler {
	return &TaskHandler{tasks: tasks, dashboard: dashboard}
}

// CreateTask handles POST /api/tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	author := req.UserID
	if author == "" {
		author = c.GetString(middleware.ContextUserID)
	}

	task, err := h.tasks.Create(c.Request.Context(), services.CreateTaskCommand{
		Title:    req.Title,
		Team:     req.Team,
		Stage:    req.Stage,
		Date:     req.Date,
		Priority: req.Priority,
		Assets:   req.Assets,
		AuthorID: author,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  true,
		"task":    task,
		"message": "Task created successfully.",
	})
}

// DuplicateTask handles POST /api/tasks/:id/duplicate
func (h *TaskHandler) DuplicateTask(c *gin.Context) {
	task, err := h.tasks.Duplicate(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  true,
		"task":    task,
		"message": "Task duplicated successfully.",
	})
}

// PostTaskActivity handles POST /api/tasks/:id/activity
func (h *TaskHandler) PostTaskActivity(c *gin.Context) {
	var req PostActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	author := req.UserID
	if author == "" {
		author = c.GetString(middleware.ContextUserID)
	}

	activity, err := h.tasks.PostActivity(c.Request.Context(), c.Param("id"), author, models.ActivityType(req.Type), req.Activity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   true,
		"activity": activity,
		"message":  "Activity posted successfully.",
	})
}

// DashboardStatistics handles GET /api/tasks/dashboard
func (h *TaskHandler) DashboardStatistics(c *gin.Context) {
	summary, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     true,
		"message":    "Successfully",
		"totalTasks": summary.TotalTasks,
		"lastTasks":  summary.LastTasks,
		"users":      summary.Users,
		"tasks":      summary.Tasks,
		"graphData":  summary.GraphData,
	})
}

// GetTasks handles GET /api/tasks?stage=&isTrashed=
func (h *TaskHandler) GetTasks(c *gin.Context) {
	trashed := false
	if v := c.Query("isTrashed"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			badRequest(c, "isTrashed must be a boolean")
			return
		}
		trashed = parsed
	}

	tasks, err := h.tasks.List(c.Request.Context(), c.Query("stage"), trashed)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "tasks": tasks})
}

// GetTask handles GET /api/tasks/:id
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, err := h.tasks.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "task": task})
}

// UpdateTask handles PUT /api/tasks/:id
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), services.UpdateTaskCommand{
		ID:       c.Param("id"),
		Title:    req.Title,
		Date:     req.Date,
		Team:     req.Team,
		Stage:    req.Stage,
		Priority: req.Priority,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  true,
		"task":    task,
		"message": "Task updated successfully.",
	})
}

// TrashTask handles PUT /api/tasks/:id/trash
func (h *TaskHandler) TrashTask(c *gin.Context) {
	if err := h.tasks.Trash(c.Request.Context(), services.TrashTaskCommand{ID: c.Param("id")}); err != nil {
		writeError(c, err)
		return
	}
	respondOK(c, "Task trashed successfully.")
}

// DeleteRestoreTask handles DELETE /api/tasks and DELETE /api/tasks/:id.
// The action is chosen by the actionType query parameter.
func (h *TaskHandler) DeleteRestoreTask(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		id = c.Query("id")
	}
	if err := h.tasks.DeleteOrRestore(c.Request.Context(), id, c.Query("actionType")); err != nil {
		writeError(c, err)
		return
	}
	respondOK(c, "Operation performed successfully.")
}
