package http

import (
	"context"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/pagekeeper/internal/entities"
	"github.com/mrlokans/pagekeeper/internal/estimate"
	"github.com/mrlokans/pagekeeper/internal/imports"
	"github.com/mrlokans/pagekeeper/internal/settingsstore"
)

// Each controller depends on the narrow interface it needs; the concrete
// implementations live in internal/database, internal/imports and friends.

// --- Import session ---

// SessionManager owns the import session the control channel drives.
type SessionManager interface {
	Open(ctx context.Context) (*imports.Session, error)
	Current() (*imports.Session, error)
	Close(ctx context.Context) error
}

// Estimator forecasts import progress for a time window.
type Estimator interface {
	Estimate(ctx context.Context, start, end int64) (estimate.Estimate, error)
}

// ImportQueue reads and resets import records.
type ImportQueue interface {
	Counts(ctx context.Context) (entities.ImportCounts, error)
	ResetFailed(ctx context.Context, importType entities.ImportType) (int64, error)
}

// VisitIndex finds the earliest imported visit.
type VisitIndex interface {
	OldestVisitTimestamp(ctx context.Context) (int64, bool, error)
}

// ProgressReader returns the persisted progress of the last session.
type ProgressReader interface {
	GetSyncProgress(ctx context.Context) (*entities.SyncProgress, error)
}

// --- Audit ---

type AuditLog interface {
	Events(eventType entities.AuditEventType, status entities.AuditStatus, limit, offset int) ([]entities.AuditEvent, int64, error)
	LogReset(importType entities.ImportType, count int64, err error)
	LogSettings(action, description string)
}

// --- Harvest settings ---

type HarvestSettingsStore interface {
	GetHarvestConfigInfo(ctx context.Context) settingsstore.HarvestConfigInfo
	SetHarvestEnabled(ctx context.Context, enabled bool) error
	SetHarvestSchedule(ctx context.Context, schedule string) error
	ClearHarvestSettings(ctx context.Context) error
}

type HarvestScheduler interface {
	Reschedule(ctx context.Context) error
	RunNow()
	IsRunning() bool
	IsHarvesting() bool
	GetNextRunTime() *time.Time
}

// --- Task queue ---

type TaskQueue interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// --- Health ---

type Pinger interface {
	Ping(ctx context.Context) error
}
