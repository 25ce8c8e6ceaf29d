package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/reading-tracker/internal/auth"
	"github.com/mrlokans/reading-tracker/internal/config"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		router.Use(auth.NewMiddleware(nil, config.Auth{Mode: config.AuthModeNone}, cfg.Logger).Handler())
	}

	var libraryAuditor LibraryAuditor
	var sessionAuditor SessionAuditor
	if cfg.Audit != nil {
		libraryAuditor = cfg.Audit
		sessionAuditor = cfg.Audit
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	libraryController := NewLibraryController(cfg.Exporter, cfg.Importer, libraryAuditor, cfg.Archiver, cfg.Logger)
	sessionsController := NewSessionsController(cfg.Sessions, cfg.Summary, sessionAuditor, cfg.Logger)

	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	api := router.Group("/api")
	api.GET("/export", libraryController.Export)
	api.POST("/import", libraryController.Import)

	api.GET("/books/:id/sessions", sessionsController.List)
	api.POST("/books/:id/sessions/start", sessionsController.Start)
	api.POST("/books/:id/sessions/stop", sessionsController.Stop)
	api.GET("/sessions/summary", sessionsController.Summary)

	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue, cfg.Logger)
		api.POST("/backups", tasksController.CreateBackup)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
	}

	if cfg.Audit != nil {
		auditController := NewAuditController(cfg.Audit, cfg.Logger)
		api.GET("/audit", auditController.GetAuditEvents)
	}

	return router
}
