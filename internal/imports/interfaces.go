package imports

import (
	"context"

	"github.com/mrlokans/pagekeeper/internal/audit"
	"github.com/mrlokans/pagekeeper/internal/entities"
	"github.com/mrlokans/pagekeeper/internal/importers"
)

// Harvester converts and stores the history of a time window.
type Harvester interface {
	Harvest(ctx context.Context, start, end int64) (importers.Result, error)
}

// Cursor remembers where the previous harvest ended.
type Cursor interface {
	LastHarvestAt(ctx context.Context) (int64, error)
	SetLastHarvestAt(ctx context.Context, ms int64) error
}

// Queue is the persistent import-record queue.
type Queue interface {
	Counts(ctx context.Context) (entities.ImportCounts, error)
	ListPending(ctx context.Context, importType entities.ImportType) ([]entities.ImportDoc, error)
	SetStatus(ctx context.Context, id string, status entities.ImportStatus, reason string) error
}

// PageProcessor is the per-item action: fetch and store one page.
type PageProcessor interface {
	Process(ctx context.Context, url string) error
}

// ProgressTracker mirrors a session's progress for later inspection.
type ProgressTracker interface {
	StartSync(ctx context.Context, totalItems int) error
	UpdateProgress(ctx context.Context, processed, succeeded, failed, skipped int, currentItem string) error
	SetStatus(ctx context.Context, status entities.SyncStatus) error
	CompleteSync(ctx context.Context, succeeded bool, errorMsg string) error
}

// Auditor records harvest and session outcomes.
type Auditor interface {
	LogHarvest(description string, stats audit.HarvestStats, err error)
	LogSession(action, description string, metadata map[string]any, err error)
}
