package httpserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"buildtrack/internal/handler"
	"buildtrack/pkg/mq"
	"buildtrack/pkg/rbac"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *handler.AuthHandler,
	projectHandler *handler.ProjectHandler,
	phaseHandler *handler.PhaseHandler,
	taskHandler *handler.TaskHandler,
	milestoneHandler *handler.MilestoneHandler,
	mediaHandler *handler.MediaHandler,
	notificationHandler *handler.NotificationHandler,
	userHandler *handler.UserHandler,
	jwtSecret string,
	logger *zap.Logger,
	db *pgxpool.Pool,
	consumer *mq.Consumer,
) *Router {
	r := gin.Default()

	r.Use(RequestLogger(logger))

	// Health endpoints (放在最前面)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}

		if consumer != nil && !consumer.IsConnected() {
			c.JSON(500, gin.H{"status": "mq_not_ready"})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)

	// Protected
	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		read := auth.Group("/")
		read.Use(RequirePermission(rbac.PermissionReadProject))
		{
			read.GET("/projects", projectHandler.List)
			read.GET("/projects/:id", projectHandler.Get)
			read.GET("/projects/:id/phases", phaseHandler.List)
			read.GET("/projects/:id/timeline", projectHandler.Timeline)
			read.GET("/tasks", taskHandler.ListByProject)
			read.GET("/tasks/:id/comments", taskHandler.Comments)
			read.GET("/tasks/:id/milestones", milestoneHandler.ListByTask)
			read.GET("/tasks/:id/media", mediaHandler.ListByTask)
			read.GET("/notifications", notificationHandler.List)
		}

		admin := auth.Group("/")
		admin.Use(RequirePermission(rbac.PermissionManageProjects))
		{
			admin.POST("/projects", projectHandler.Create)
			admin.PUT("/projects/:id", projectHandler.Update)
			admin.DELETE("/projects/:id", projectHandler.Delete)
		}

		users := auth.Group("/")
		users.Use(RequirePermission(rbac.PermissionManageUsers))
		{
			users.PUT("/users/:id/projects", userHandler.AssignProjects)
		}

		phases := auth.Group("/")
		phases.Use(RequirePermission(rbac.PermissionManagePhases))
		{
			phases.POST("/projects/:id/phases", phaseHandler.Create)
			phases.PUT("/projects/:id/phases/:phaseId", phaseHandler.Update)
			phases.POST("/projects/:id/phases/reorder", phaseHandler.Reorder)
			phases.DELETE("/projects/:id/phases/:phaseId", phaseHandler.Delete)
		}

		tasks := auth.Group("/")
		tasks.Use(RequirePermission(rbac.PermissionManageTasks))
		{
			tasks.POST("/tasks", taskHandler.Create)
			tasks.PUT("/tasks/:id", taskHandler.Update)
			tasks.DELETE("/tasks/:id", taskHandler.Delete)
			tasks.POST("/tasks/:id/milestones", milestoneHandler.Create)
			tasks.PUT("/tasks/:id/milestones/:milestoneId", milestoneHandler.Update)
			tasks.DELETE("/tasks/:id/milestones/:milestoneId", milestoneHandler.Delete)
		}

		progress := auth.Group("/")
		progress.Use(RequirePermission(rbac.PermissionUpdateProgress))
		{
			progress.POST("/tasks/:id/progress", taskHandler.UpdateProgress)
		}

		media := auth.Group("/")
		media.Use(RequirePermission(rbac.PermissionManageMedia))
		{
			media.POST("/tasks/:id/media", mediaHandler.Register)
			media.PUT("/tasks/:id/media/:mediaId", mediaHandler.UpdateMeta)
			media.DELETE("/tasks/:id/media/:mediaId", mediaHandler.Delete)
		}
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
