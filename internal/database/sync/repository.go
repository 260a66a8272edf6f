// Package sync provides database operations for session progress tracking.
//
// A single row per sync type mirrors the running import session so that a
// restarted process or a freshly connected client can see where the last
// session stopped.
//
// # Usage
//
//	repo := sync.NewRepository(db, entities.SyncTypeHistoryImport)
//	err := repo.StartSync(ctx, 100)
package sync

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/pagekeeper/internal/entities"
)

// StaleAfter is how long a running session may go without updates before it
// is considered interrupted.
const StaleAfter = 10 * time.Minute

// Repository handles all sync progress database operations.
type Repository struct {
	db       *gorm.DB
	syncType entities.SyncType
}

// NewRepository creates a sync repository for a specific sync type.
func NewRepository(db *gorm.DB, syncType entities.SyncType) *Repository {
	return &Repository{db: db, syncType: syncType}
}

// GetSyncProgress retrieves the sync progress for the configured sync type.
func (r *Repository) GetSyncProgress(ctx context.Context) (*entities.SyncProgress, error) {
	var progress entities.SyncProgress
	err := r.db.WithContext(ctx).Where("sync_type = ?", r.syncType).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// StartSync creates the progress row or resets it for a new session.
func (r *Repository) StartSync(ctx context.Context, totalItems int) error {
	now := time.Now()
	progress := entities.SyncProgress{
		SyncType:   r.syncType,
		Status:     entities.SyncStatusRunning,
		TotalItems: totalItems,
		StartedAt:  now,
		UpdatedAt:  now,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "sync_type"}},
		DoUpdates: clause.Assignments(map[string]any{
			"status":       progress.Status,
			"total_items":  totalItems,
			"processed":    0,
			"succeeded":    0,
			"failed":       0,
			"skipped":      0,
			"current_item": "",
			"error":        "",
			"started_at":   now,
			"updated_at":   now,
			"completed_at": nil,
		}),
	}).Create(&progress).Error
}

// UpdateProgress records counters of an ongoing session.
func (r *Repository) UpdateProgress(ctx context.Context, processed, succeeded, failed, skipped int, currentItem string) error {
	return r.db.WithContext(ctx).Model(&entities.SyncProgress{}).
		Where("sync_type = ?", r.syncType).
		Updates(map[string]any{
			"processed":    processed,
			"succeeded":    succeeded,
			"failed":       failed,
			"skipped":      skipped,
			"current_item": currentItem,
			"updated_at":   time.Now(),
		}).Error
}

// SetStatus records a pause, resume or stop without touching the counters.
func (r *Repository) SetStatus(ctx context.Context, status entities.SyncStatus) error {
	return r.db.WithContext(ctx).Model(&entities.SyncProgress{}).
		Where("sync_type = ?", r.syncType).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

// CompleteSync marks a session as completed or failed.
func (r *Repository) CompleteSync(ctx context.Context, succeeded bool, errorMsg string) error {
	now := time.Now()
	status := entities.SyncStatusCompleted
	if !succeeded {
		status = entities.SyncStatusFailed
	}

	updates := map[string]any{
		"status":       status,
		"current_item": "",
		"updated_at":   now,
		"completed_at": now,
	}
	if errorMsg != "" {
		updates["error"] = errorMsg
	}
	return r.db.WithContext(ctx).Model(&entities.SyncProgress{}).
		Where("sync_type = ?", r.syncType).
		Updates(updates).Error
}

// MarkInterrupted fails a session row left behind by a process that exited
// mid-session: a paused row, or a running row without updates for StaleAfter.
// It reports whether a row was marked.
func (r *Repository) MarkInterrupted(ctx context.Context) (bool, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&entities.SyncProgress{}).
		Where("sync_type = ?", r.syncType).
		Where("status = ? OR (status = ? AND updated_at < ?)",
			entities.SyncStatusPaused, entities.SyncStatusRunning, now.Add(-StaleAfter)).
		Updates(map[string]any{
			"status":       entities.SyncStatusFailed,
			"error":        "session was interrupted",
			"current_item": "",
			"updated_at":   now,
			"completed_at": now,
		})
	return result.RowsAffected > 0, result.Error
}
