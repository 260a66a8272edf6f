package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/pagekeeper/internal/audit"
	"github.com/mrlokans/pagekeeper/internal/batch"
	"github.com/mrlokans/pagekeeper/internal/blacklist"
	"github.com/mrlokans/pagekeeper/internal/database"
	"github.com/mrlokans/pagekeeper/internal/database/documents"
	importsrepo "github.com/mrlokans/pagekeeper/internal/database/imports"
	"github.com/mrlokans/pagekeeper/internal/database/sync"
	"github.com/mrlokans/pagekeeper/internal/estimate"
	"github.com/mrlokans/pagekeeper/internal/fetcher"
	"github.com/mrlokans/pagekeeper/internal/history"
	"github.com/mrlokans/pagekeeper/internal/http"
	"github.com/mrlokans/pagekeeper/internal/importers"
	"github.com/mrlokans/pagekeeper/internal/imports"
	"github.com/mrlokans/pagekeeper/internal/scheduler"
	"github.com/mrlokans/pagekeeper/internal/settingsstore"
	"github.com/mrlokans/pagekeeper/internal/tasks"
)

// =============================================================================
// History Source
// =============================================================================

var _ history.Provider = (*history.ChromiumReader)(nil)
var _ history.Allower = (*blacklist.Blacklist)(nil)
var _ history.ImportIndex = (*importsrepo.Repository)(nil)

// =============================================================================
// Harvest Pipeline
// =============================================================================

var _ importers.ItemSource = (*history.Source)(nil)
var _ importers.DocumentWriter = (*documents.Repository)(nil)

var _ estimate.WorthyCounter = (*history.Source)(nil)
var _ estimate.PageCounter = (*documents.Repository)(nil)
var _ estimate.StatusCounter = (*importsrepo.Repository)(nil)

// =============================================================================
// Import Sessions
// =============================================================================

var _ imports.Harvester = (*importers.Pipeline)(nil)
var _ imports.Cursor = (*settingsstore.SettingsStore)(nil)
var _ imports.Queue = (*importsrepo.Repository)(nil)
var _ imports.PageProcessor = (*fetcher.Fetcher)(nil)
var _ imports.ProgressTracker = (*sync.Repository)(nil)
var _ imports.Auditor = (*audit.Service)(nil)

var _ batch.Observer[imports.Item] = (*imports.Session)(nil)
var _ batch.StateObserver = (*imports.Session)(nil)

var _ fetcher.PageStore = (*documents.Repository)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ tasks.HistoryHarvester = (*imports.Orchestrator)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)

var _ scheduler.HarvestSettings = (*settingsstore.SettingsStore)(nil)
var _ scheduler.Trigger = scheduler.QueueTrigger{}
var _ scheduler.Trigger = scheduler.DirectTrigger{}
var _ scheduler.TaskAdder = (*tasks.Client)(nil)

// =============================================================================
// HTTP Control Channel
// =============================================================================

var _ http.SessionManager = (*imports.Manager)(nil)
var _ http.Estimator = (*estimate.Calculator)(nil)
var _ http.ImportQueue = (*importsrepo.Repository)(nil)
var _ http.VisitIndex = (*documents.Repository)(nil)
var _ http.ProgressReader = (*sync.Repository)(nil)
var _ http.AuditLog = (*audit.Service)(nil)
var _ http.HarvestSettingsStore = (*settingsstore.SettingsStore)(nil)
var _ http.HarvestScheduler = (*scheduler.HarvestScheduler)(nil)
var _ http.TaskQueue = (*tasks.Client)(nil)
var _ http.Pinger = (*database.Database)(nil)
