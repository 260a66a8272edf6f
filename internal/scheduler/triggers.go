package scheduler

import (
	"context"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/pagekeeper/internal/tasks"
)

// TaskAdder enqueues background tasks.
type TaskAdder interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
}

// QueueTrigger enqueues a harvest task instead of harvesting in-process, so
// the harvest gets the queue's retries.
type QueueTrigger struct {
	Tasks TaskAdder
}

func (t QueueTrigger) TriggerHarvest(ctx context.Context, trigger string) error {
	_, err := t.Tasks.Enqueue(ctx, tasks.HarvestHistoryTask{Trigger: trigger})
	return err
}

// DirectTrigger harvests in the calling goroutine. Used when the task queue
// is disabled.
type DirectTrigger struct {
	Harvester tasks.HistoryHarvester
}

func (t DirectTrigger) TriggerHarvest(ctx context.Context, _ string) error {
	_, err := t.Harvester.Harvest(ctx)
	return err
}
