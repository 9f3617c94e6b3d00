package routes

import (
	"task-management-api/internal/auth"
	"task-management-api/internal/handlers"
	"task-management-api/internal/middleware"
	"task-management-api/internal/realtime"
	"task-management-api/internal/services"
	"task-management-api/internal/session"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Options carries everything the router needs. Hub and Denylist may be nil.
type Options struct {
	DB           *gorm.DB
	Tokens       *auth.TokenManager
	Hasher       services.PasswordHasher
	Denylist     session.Denylist
	Hub          *realtime.Hub
	AllowOrigin  string
	SecureCookie bool
}

func SetupRoutes(opts Options) *gin.Engine {
	hub := opts.Hub
	if hub == nil {
		hub = realtime.NewHub()
	}

	userService := services.NewUserService(opts.DB, opts.Hasher)
	taskHandler := handlers.NewTaskHandler(
		services.NewTaskService(opts.DB, hub),
		services.NewDashboardService(opts.DB),
	)
	subTaskHandler := handlers.NewSubTaskHandler(services.NewSubTaskService(opts.DB))
	userHandler := handlers.NewUserHandler(userService, services.NewNoticeService(opts.DB))
	authHandler := handlers.NewAuthHandler(userService, opts.Tokens, opts.Denylist, opts.SecureCookie)
	wsHandler := handlers.NewWSHandler(hub, opts.AllowOrigin)

	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery(), middleware.RequestLogger(), middleware.CORS(opts.AllowOrigin))

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Task Management API is running",
		})
	})

	// Public routes; a token is optional and only lets admins register admins
	api := ginRouter.Group("/api")
	{
		api.POST("/users/register",
			middleware.OptionalAuth(opts.Tokens, opts.Denylist),
			middleware.ActiveAccount(userService),
			authHandler.Register,
		)
		api.POST("/users/login", authHandler.Login)
	}

	// Protected routes (authentication required)
	protected := api.Group("")
	protected.Use(
		middleware.JWTAuthMiddleware(opts.Tokens, opts.Denylist),
		middleware.ActiveAccount(userService),
	)
	{
		tasks := protected.Group("/tasks")
		tasks.POST("", taskHandler.CreateTask)
		tasks.GET("", taskHandler.GetTasks)
		tasks.DELETE("", taskHandler.DeleteRestoreTask)
		tasks.GET("/dashboard", taskHandler.DashboardStatistics)
		tasks.GET("/:id", taskHandler.GetTask)
		tasks.PUT("/:id", taskHandler.UpdateTask)
		tasks.DELETE("/:id", taskHandler.DeleteRestoreTask)
		tasks.PUT("/:id/trash", taskHandler.TrashTask)
		tasks.POST("/:id/duplicate", taskHandler.DuplicateTask)
		tasks.POST("/:id/activity", taskHandler.PostTaskActivity)

		tasks.POST("/:id/subtasks", subTaskHandler.CreateSubTask)
		tasks.GET("/:id/subtasks", subTaskHandler.ListSubTasks)
		tasks.GET("/:id/subtasks/:subTaskId", subTaskHandler.GetSubTask)
		tasks.PUT("/:id/subtasks/:subTaskId", subTaskHandler.UpdateSubTask)
		tasks.DELETE("/:id/subtasks/:subTaskId", subTaskHandler.DeleteSubTask)

		users := protected.Group("/users")
		users.POST("/logout", authHandler.Logout)
		users.GET("/get-team", userHandler.GetTeamList)
		users.GET("/notifications", userHandler.GetNotificationsList)
		users.PUT("/read-noti", userHandler.MarkNotificationRead)
		users.PUT("/profile", userHandler.UpdateUserProfile)
		users.PUT("/change-password", userHandler.ChangeUserPassword)

		admin := users.Group("", middleware.AdminOnly())
		admin.PUT("/:id", userHandler.ActivateUserProfile)
		admin.DELETE("/:id", userHandler.DeleteUserProfile)

		protected.GET("/ws", wsHandler.Connect)
	}

	return ginRouter
}
