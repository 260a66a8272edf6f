package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/pagekeeper/internal/importers"
	"github.com/mrlokans/pagekeeper/internal/logger"
)

// HistoryHarvester imports history visited since the previous harvest.
type HistoryHarvester interface {
	Harvest(ctx context.Context) (importers.Result, error)
}

// HarvestHistoryTask imports new browsing history into the document store.
// Trigger names what enqueued it, e.g. "schedule" or "manual".
type HarvestHistoryTask struct {
	Trigger string `json:"trigger,omitempty"`
}

// Config returns the queue configuration for harvest tasks. A harvest only
// advances its cursor on success, so a retried attempt re-reads the same
// window.
func (t HarvestHistoryTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "harvest_history",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// HarvestHistoryProcessor creates a processor function for HarvestHistoryTask.
func HarvestHistoryProcessor(harvester HistoryHarvester, log *logger.Logger) backlite.QueueProcessor[HarvestHistoryTask] {
	if log == nil {
		log = logger.Nop()
	}
	return func(ctx context.Context, task HarvestHistoryTask) error {
		if harvester == nil {
			return fmt.Errorf("history harvester not configured")
		}

		result, err := harvester.Harvest(ctx)
		if err != nil {
			return fmt.Errorf("harvest history: %w", err)
		}

		log.WithFields(logger.Fields{
			"trigger":         task.Trigger,
			logger.FieldCount: result.Items,
			"pages":           result.Written.Pages,
			"imports":         result.Written.Imports,
			"skipped":         result.Written.Skipped,
		}).Info("History harvested")
		return nil
	}
}

// NewHarvestHistoryQueue creates a backlite queue for harvest tasks.
func NewHarvestHistoryQueue(harvester HistoryHarvester, log *logger.Logger) backlite.Queue {
	return backlite.NewQueue(HarvestHistoryProcessor(harvester, log))
}
