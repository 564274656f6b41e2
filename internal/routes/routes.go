package routes

import (
	"github.com/gin-gonic/gin"

	"planboard/internal/handlers"
	"planboard/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	taskHandler *handlers.TaskHandler,
	alertHandler *handlers.AlertHandler,
	reportHandler *handlers.ReportHandler,
	integrationsHandler *handlers.IntegrationsHandler, // nil when Telegram is disabled
) *gin.Engine {

	// ---- public
	r.POST("/login", authHandler.Login)
	r.POST("/register", authHandler.Register)

	// ---- protected
	r.Use(middleware.AuthMiddleware(jwtSecret))

	// TASKS
	tasks := r.Group("/tasks")
	{
		tasks.POST("/", taskHandler.Create)
		tasks.GET("/", taskHandler.GetAll)
		tasks.GET("/:id", taskHandler.GetByID)
		tasks.PUT("/:id", taskHandler.Update)
		tasks.POST("/:id/status", taskHandler.UpdateStatus)
		tasks.DELETE("/:id", taskHandler.Delete)
	}

	// ALERTS
	alerts := r.Group("/alerts")
	{
		alerts.GET("/", alertHandler.List)
		alerts.DELETE("/:index", alertHandler.Remove)
		alerts.POST("/permission", alertHandler.RequestPermission)
	}

	// REALTIME
	r.GET("/ws/alerts", alertHandler.Stream)

	// REPORTS
	r.GET("/reports/deadlines", reportHandler.DeadlineDigest)

	// INTEGRATIONS
	if integrationsHandler != nil {
		r.POST("/integrations/telegram/link", integrationsHandler.LinkTelegram)
	}

	return r
}
