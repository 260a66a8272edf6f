package entrypoint

import (
	"errors"
	"fmt"

	"github.com/mrlokans/pagekeeper/internal/audit"
	"github.com/mrlokans/pagekeeper/internal/blacklist"
	"github.com/mrlokans/pagekeeper/internal/config"
	"github.com/mrlokans/pagekeeper/internal/database"
	auditrepo "github.com/mrlokans/pagekeeper/internal/database/audit"
	"github.com/mrlokans/pagekeeper/internal/database/documents"
	importsrepo "github.com/mrlokans/pagekeeper/internal/database/imports"
	"github.com/mrlokans/pagekeeper/internal/database/settings"
	syncrepo "github.com/mrlokans/pagekeeper/internal/database/sync"
	"github.com/mrlokans/pagekeeper/internal/entities"
	"github.com/mrlokans/pagekeeper/internal/estimate"
	"github.com/mrlokans/pagekeeper/internal/fetcher"
	"github.com/mrlokans/pagekeeper/internal/history"
	"github.com/mrlokans/pagekeeper/internal/importers"
	"github.com/mrlokans/pagekeeper/internal/imports"
	"github.com/mrlokans/pagekeeper/internal/logger"
	"github.com/mrlokans/pagekeeper/internal/settingsstore"
)

// ErrNoHistoryPath is returned when HISTORY_DB_PATH is not configured.
var ErrNoHistoryPath = errors.New("history database path is not set (HISTORY_DB_PATH or -history)")

// App holds the components shared by the server and the CLI commands.
type App struct {
	Log *logger.Logger

	DB        *database.Database
	Documents *documents.Repository
	Queue     *importsrepo.Repository
	Settings  *settingsstore.SettingsStore
	Progress  *syncrepo.Repository
	Audit     *audit.Service

	History      *history.ChromiumReader
	Source       *history.Source
	Orchestrator *imports.Orchestrator
	Estimator    *estimate.Calculator
}

// NewApp opens the document store and the browser history and wires the
// import pipeline. Close releases both.
func NewApp(cfg *config.Config, log *logger.Logger) (*App, error) {
	if cfg.History.DBPath == "" {
		return nil, ErrNoHistoryPath
	}

	bl, err := blacklist.New(cfg.Blacklist.Patterns)
	if err != nil {
		return nil, fmt.Errorf("invalid blacklist: %w", err)
	}

	db, err := database.NewDatabase(cfg.Database.Path, log)
	if err != nil {
		return nil, err
	}

	reader, err := history.OpenChromium(cfg.History.DBPath)
	if err != nil {
		db.Close()
		return nil, err
	}

	app := &App{
		Log:       log,
		DB:        db,
		Documents: documents.NewRepository(db.DB),
		Queue:     importsrepo.NewRepository(db.DB),
		Settings:  settingsstore.New(settings.NewRepository(db.DB)),
		Progress:  syncrepo.NewRepository(db.DB, entities.SyncTypeHistoryImport),
		Audit:     audit.NewService(auditrepo.NewRepository(db.DB), log),
		History:   reader,
	}

	app.Source = history.NewSource(reader, bl, app.Queue,
		history.WithConcurrency(cfg.Import.VisitConcurrency),
		history.WithLogger(log),
	)
	app.Estimator = estimate.NewCalculator(app.Source, app.Documents, app.Queue)

	pageFetcher, err := fetcher.New(fetcher.Config{
		Timeout:      cfg.Fetch.Timeout,
		UserAgent:    cfg.Fetch.UserAgent,
		StorageDir:   cfg.Fetch.StorageDir,
		MaxBodyBytes: int64(cfg.Fetch.MaxBodyMB) << 20,
	}, app.Documents, log)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Orchestrator = imports.NewOrchestrator(imports.Deps{
		Harvester: importers.NewPipeline(app.Source, importers.NewConverter(), app.Documents, log),
		Cursor:    app.Settings,
		Queue:     app.Queue,
		Processor: pageFetcher,
		Progress:  app.Progress,
		Auditor:   app.Audit,
		Logger:    log,
	}, cfg.Import.Concurrency)

	log.WithFields(logger.Fields{
		"history":     cfg.History.DBPath,
		"blacklist":   bl.Len(),
		"concurrency": cfg.Import.Concurrency,
	}).Info("Import pipeline ready")

	return app, nil
}

// Close flushes pending audit writes and closes the history and the
// document store.
func (a *App) Close() error {
	a.Audit.Wait()
	var errs []error
	if a.History != nil {
		errs = append(errs, a.History.Close())
	}
	errs = append(errs, a.DB.Close())
	return errors.Join(errs...)
}
