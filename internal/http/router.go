package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/pagekeeper/internal/logger"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	router := gin.New()
	router.Use(RecoveryMiddleware(log))
	router.Use(LoggerMiddleware(log))

	health := NewHealthController(cfg.Database, cfg.Sessions, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", Ping)

	// Import control channel
	if cfg.Sessions != nil {
		importsController := NewImportsController(cfg)
		router.POST("/api/imports/session", importsController.OpenSession)
		router.GET("/api/imports/session", importsController.GetSession)
		router.DELETE("/api/imports/session", importsController.CloseSession)
		router.POST("/api/imports/commands", importsController.Command)
		router.GET("/api/imports/events", importsController.Events)
		if cfg.Estimator != nil {
			router.GET("/api/imports/estimates", importsController.Estimates)
		}
		if cfg.Queue != nil {
			router.GET("/api/imports/counts", importsController.Counts)
			router.POST("/api/imports/failed/reset", importsController.ResetFailed)
		}
		if cfg.Progress != nil {
			router.GET("/api/imports/progress", importsController.Progress)
		}
	}

	// Audit log
	if cfg.Audit != nil {
		audit := NewAuditController(cfg.Audit)
		router.GET("/api/audit", audit.GetAuditEvents)
		router.GET("/api/audit/types", audit.GetEventTypes)
	}

	// Background harvest settings
	if cfg.HarvestSettings != nil {
		harvest := NewHarvestSettingsController(cfg.HarvestSettings, cfg.HarvestScheduler, cfg.Audit)
		router.GET("/api/settings/harvest", harvest.GetSettings)
		router.PUT("/api/settings/harvest", harvest.UpdateSettings)
		router.POST("/api/settings/harvest/reset", harvest.ResetSettings)
		router.POST("/api/settings/harvest/run", harvest.HarvestNow)
	}

	// Task queue routes (only if task client is configured)
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient, cfg.AuditRetentionDays, cfg.AuditKeepFailed)
		router.GET("/api/tasks/types", tasksController.ListTaskTypes)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
		router.POST("/api/tasks/:type/run", tasksController.RunTask)
	}

	return router
}
