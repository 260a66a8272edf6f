package http

import (
	"github.com/mrlokans/pagekeeper/internal/logger"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. Optional dependencies left nil disable
// their routes.
type RouterConfig struct {
	Logger *logger.Logger

	// Import control channel
	Sessions  SessionManager
	Estimator Estimator
	Queue     ImportQueue
	Visits    VisitIndex
	Progress  ProgressReader

	// Audit log
	Audit              AuditLog
	AuditRetentionDays int
	AuditKeepFailed    bool

	// Background harvesting
	HarvestSettings  HarvestSettingsStore
	HarvestScheduler HarvestScheduler

	// Task queue client (optional)
	TaskClient TaskQueue

	// Health
	Database Pinger
	Version  string
}
