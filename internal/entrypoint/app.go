package entrypoint

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	auditsvc "github.com/mrlokans/reading-tracker/internal/audit"
	"github.com/mrlokans/reading-tracker/internal/auth"
	"github.com/mrlokans/reading-tracker/internal/backup"
	"github.com/mrlokans/reading-tracker/internal/config"
	"github.com/mrlokans/reading-tracker/internal/database"
	auditrepo "github.com/mrlokans/reading-tracker/internal/database/audit"
	"github.com/mrlokans/reading-tracker/internal/database/users"
	http_controllers "github.com/mrlokans/reading-tracker/internal/http"
	"github.com/mrlokans/reading-tracker/internal/library"
	"github.com/mrlokans/reading-tracker/internal/scheduler"
	"github.com/mrlokans/reading-tracker/internal/sessions"
	"github.com/mrlokans/reading-tracker/internal/storage"
	"github.com/mrlokans/reading-tracker/internal/streaks"
	"github.com/mrlokans/reading-tracker/internal/tasks"
)

// App holds every service of a running instance. The CLI uses the core
// services directly; serve additionally starts the task queue and scheduler.
type App struct {
	Config *config.Config
	Log    *zap.Logger

	DB         *database.Database
	Users      *users.Repository
	Audit      *auditsvc.Service
	Archiver   *auditsvc.Auditor
	Exporter   *library.Exporter
	Reconciler *library.Reconciler
	Sessions   *sessions.Manager
	Streaks    *streaks.Service
	Auth       *auth.Service
	Backup     *backup.Service

	Tasks     *tasks.Client
	Scheduler *scheduler.Scheduler
}

// NewApp opens the database and builds the core services.
func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	db, err := database.NewDatabase(cfg.Database, log)
	if err != nil {
		return nil, err
	}

	userRepo := users.NewRepository(db.DB)
	auditService := auditsvc.NewService(auditrepo.NewRepository(db.DB), log)
	exporter := library.NewExporter(db.DB, log)

	sink, err := newSink(ctx, cfg.Backup)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &App{
		Config:     cfg,
		Log:        log,
		DB:         db,
		Users:      userRepo,
		Audit:      auditService,
		Archiver:   auditsvc.NewAuditor(cfg.Audit.Dir, log),
		Exporter:   exporter,
		Reconciler: library.NewReconciler(db.DB, log),
		Sessions:   sessions.NewManager(db.DB, log),
		Streaks:    streaks.NewService(db.DB, log, cfg.Streaks.Location()),
		Auth:       auth.NewService(userRepo, cfg.Auth),
		Backup:     backup.NewService(exporter, userRepo, sink, auditService, log),
	}, nil
}

// newSink picks object storage when an endpoint is configured and the local
// backup directory otherwise.
func newSink(ctx context.Context, cfg config.Backup) (backup.Sink, error) {
	if cfg.Storage.Endpoint == "" {
		return backup.NewFileSink(cfg.Dir), nil
	}
	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	sink := backup.NewObjectSink(client, cfg.Storage.Bucket, cfg.Storage.Region)
	if err := sink.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to prepare backup bucket: %w", err)
	}
	return sink, nil
}

// EnableBackground creates the task queue and registers the scheduled jobs.
// It is a no-op when tasks are disabled.
func (a *App) EnableBackground() error {
	if !a.Config.Tasks.Enabled {
		return nil
	}

	client, err := tasks.NewClient(a.Config.Tasks, a.Log)
	if err != nil {
		return err
	}
	client.Register(
		tasks.NewBackupQueue(a.Backup, a.Log),
		tasks.NewCleanupAuditEventsQueue(a.Audit, a.Log),
	)

	sched := scheduler.New(client, a.Log)
	if a.Config.Backup.Enabled {
		if err := sched.Add(scheduler.JobBackup, a.Config.Backup.Schedule, tasks.BackupTask{}); err != nil {
			client.Close()
			return err
		}
	}
	cleanup := tasks.CleanupAuditEventsTask{RetentionDays: a.Config.Audit.RetentionDays}
	if err := sched.Add(scheduler.JobAuditCleanup, scheduler.AuditCleanupSchedule, cleanup); err != nil {
		client.Close()
		return err
	}

	a.Tasks = client
	a.Scheduler = sched
	return nil
}

// Start launches the task workers and the scheduler.
func (a *App) Start(ctx context.Context) {
	if a.Tasks != nil {
		go a.Tasks.Start(ctx)
	}
	if a.Scheduler != nil {
		a.Scheduler.Start(ctx)
	}
}

// Router builds the HTTP router over the app's services.
func (a *App) Router(version string) *gin.Engine {
	cfg := http_controllers.RouterConfig{
		Exporter: a.Exporter,
		Importer: a.Reconciler,
		Sessions: a.Sessions,
		Summary:  a.Streaks,
		Database: a.DB,
		Audit:    a.Audit,
		Archiver: a.Archiver,
		Logger:   a.Log,
		Version:  version,
	}
	if a.Tasks != nil {
		cfg.TaskQueue = a.Tasks
	}
	if a.Auth.IsAuthEnabled() {
		cfg.AuthMiddleware = auth.NewMiddleware(a.Auth, a.Config.Auth, a.Log)
	}
	return http_controllers.NewRouter(cfg)
}

// Shutdown stops background work and closes the database. Pending audit
// writes are flushed before the database goes away.
func (a *App) Shutdown(ctx context.Context) {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.Tasks != nil {
		a.Tasks.Stop(ctx)
		if err := a.Tasks.Close(); err != nil {
			a.Log.Warn("failed to close task database", zap.Error(err))
		}
	}
	a.Audit.Wait()
	if err := a.DB.Close(); err != nil {
		a.Log.Warn("failed to close database", zap.Error(err))
	}
}
