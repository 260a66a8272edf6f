package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/pagekeeper/internal/config"
	http_controllers "github.com/mrlokans/pagekeeper/internal/http"
	"github.com/mrlokans/pagekeeper/internal/imports"
	"github.com/mrlokans/pagekeeper/internal/logger"
	"github.com/mrlokans/pagekeeper/internal/scheduler"
	"github.com/mrlokans/pagekeeper/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// NewLogger builds the service logger from cfg.
func NewLogger(cfg *config.Config) *logger.Logger {
	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.Format = cfg.Log.Format
	logCfg.File = cfg.Log.File
	return logger.New(logCfg)
}

func Serve(router *gin.Engine, cfg *config.Config, log *logger.Logger, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.WithField("timeout", timeout).Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop producers (sessions, scheduler, task queue) before the listener,
	// so open SSE streams end on their own.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server shutdown")
	}

	log.Info("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log := NewLogger(cfg)
	defer log.Close()

	log.WithField("version", version).Info("Starting pagekeeper")
	gin.SetMode(gin.ReleaseMode)

	app, err := NewApp(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize")
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.WithError(err).Error("Error closing stores")
		}
	}()

	if interrupted, err := app.Progress.MarkInterrupted(context.Background()); err != nil {
		log.WithError(err).Warn("Failed to check for an interrupted import session")
	} else if interrupted {
		log.Warn("Previous import session was interrupted; its pending pages stay queued")
	}

	sessions := imports.NewManager(app.Orchestrator)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var trigger scheduler.Trigger = scheduler.DirectTrigger{Harvester: app.Orchestrator}
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to initialize task queue")
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.WithError(err).Error("Error closing task client")
			}
		}()

		taskClient.Register(
			tasks.NewHarvestHistoryQueue(app.Orchestrator, log),
			tasks.NewCleanupAuditEventsQueue(app.Audit, log),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		// Prune the audit log once per start; the queue retries on failure.
		cleanup := tasks.CleanupAuditEventsTask{
			RetentionDays: cfg.Audit.RetentionDays,
			KeepFailed:    cfg.Audit.KeepFailed,
		}
		if _, err := taskClient.Enqueue(context.Background(), cleanup); err != nil {
			log.WithError(err).Warn("Failed to enqueue audit cleanup")
		}

		trigger = scheduler.QueueTrigger{Tasks: taskClient}
	}

	harvestScheduler := scheduler.NewHarvestScheduler(app.Settings, trigger, log)
	if err := harvestScheduler.Start(context.Background()); err != nil {
		log.WithError(err).Error("Failed to start harvest scheduler")
	}

	routerCfg := http_controllers.RouterConfig{
		Logger:             log,
		Sessions:           sessions,
		Estimator:          app.Estimator,
		Queue:              app.Queue,
		Visits:             app.Documents,
		Progress:           app.Progress,
		Audit:              app.Audit,
		AuditRetentionDays: cfg.Audit.RetentionDays,
		AuditKeepFailed:    cfg.Audit.KeepFailed,
		HarvestSettings:    app.Settings,
		HarvestScheduler:   harvestScheduler,
		Database:           app.DB,
		Version:            version,
	}
	if taskClient != nil {
		routerCfg.TaskClient = taskClient
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if err := sessions.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("Import session did not drain")
		}
		harvestScheduler.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, log, onShutdown)
}
