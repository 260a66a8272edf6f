package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/pagekeeper/internal/logger"
)

// AuditEventCleaner prunes the audit trail.
type AuditEventCleaner interface {
	PruneEvents(retention time.Duration, keepFailed bool) (int64, error)
}

// DefaultAuditRetentionDays applies when a cleanup task carries no retention.
const DefaultAuditRetentionDays = 30

// CleanupAuditEventsTask prunes audit events older than RetentionDays. With
// KeepFailed, failed harvests and sessions outlive the window.
type CleanupAuditEventsTask struct {
	RetentionDays int  `json:"retention_days"`
	KeepFailed    bool `json:"keep_failed,omitempty"`
}

// Retention is the age past which events are pruned.
func (t CleanupAuditEventsTask) Retention() time.Duration {
	days := t.RetentionDays
	if days <= 0 {
		days = DefaultAuditRetentionDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// Config keeps cleanup cheap to retry: a failed attempt leaves the table as
// it was, and the next one deletes the same rows.
func (t CleanupAuditEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_audit_events",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupAuditEventsProcessor prunes events through cleaner.
func CleanupAuditEventsProcessor(cleaner AuditEventCleaner, log *logger.Logger) backlite.QueueProcessor[CleanupAuditEventsTask] {
	if log == nil {
		log = logger.Nop()
	}
	return func(ctx context.Context, task CleanupAuditEventsTask) error {
		if cleaner == nil {
			return fmt.Errorf("audit event cleaner not configured")
		}

		retention := task.Retention()
		deleted, err := cleaner.PruneEvents(retention, task.KeepFailed)
		if err != nil {
			return fmt.Errorf("prune audit events older than %s: %w", retention, err)
		}

		log.WithFields(logger.Fields{
			logger.FieldCount: deleted,
			"retention":       retention.String(),
			"keep_failed":     task.KeepFailed,
		}).Info("Pruned audit events")
		return nil
	}
}

// NewCleanupAuditEventsQueue creates the backlite queue for audit cleanup.
func NewCleanupAuditEventsQueue(cleaner AuditEventCleaner, log *logger.Logger) backlite.Queue {
	return backlite.NewQueue(CleanupAuditEventsProcessor(cleaner, log))
}
