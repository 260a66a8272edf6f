package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/pagekeeper/internal/importers"
	"github.com/mrlokans/pagekeeper/internal/settingsstore"
	"github.com/mrlokans/pagekeeper/internal/tasks"
)

type staticSettings settingsstore.HarvestConfig

func (s staticSettings) GetHarvestConfig(context.Context) settingsstore.HarvestConfig {
	return settingsstore.HarvestConfig(s)
}

type countingTrigger struct {
	mu       sync.Mutex
	triggers []string
	block    chan struct{}
	fired    chan struct{}
}

func (c *countingTrigger) TriggerHarvest(_ context.Context, trigger string) error {
	c.mu.Lock()
	c.triggers = append(c.triggers, trigger)
	c.mu.Unlock()
	if c.fired != nil {
		c.fired <- struct{}{}
	}
	if c.block != nil {
		<-c.block
	}
	return nil
}

func (c *countingTrigger) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.triggers)
}

func TestHarvestScheduler_Disabled(t *testing.T) {
	s := NewHarvestScheduler(staticSettings{Enabled: false, Schedule: "0 * * * *"}, &countingTrigger{}, nil)

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.GetNextRunTime())
}

func TestHarvestScheduler_InvalidSchedule(t *testing.T) {
	s := NewHarvestScheduler(staticSettings{Enabled: true, Schedule: "whenever"}, &countingTrigger{}, nil)

	assert.Error(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestHarvestScheduler_StartStop(t *testing.T) {
	s := NewHarvestScheduler(staticSettings{Enabled: true, Schedule: "0 * * * *"}, &countingTrigger{}, nil)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	next := s.GetNextRunTime()
	require.NotNil(t, next)
	assert.Zero(t, next.Minute())

	require.NoError(t, s.Reschedule(context.Background()))
	assert.True(t, s.IsRunning())

	s.Stop()
	assert.False(t, s.IsRunning())
	s.Stop()
}

func TestHarvestScheduler_StopsWithContext(t *testing.T) {
	s := NewHarvestScheduler(staticSettings{Enabled: true, Schedule: "0 * * * *"}, &countingTrigger{}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !s.IsRunning() }, 2*time.Second, 10*time.Millisecond)
}

func TestHarvestScheduler_RescheduleOutlivesRequest(t *testing.T) {
	s := NewHarvestScheduler(staticSettings{Enabled: true, Schedule: "0 * * * *"}, &countingTrigger{}, nil)
	defer s.Stop()

	reqCtx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Reschedule(reqCtx))
	cancel()

	time.Sleep(50 * time.Millisecond)
	assert.True(t, s.IsRunning())
}

func TestHarvestScheduler_RunNowSkipsOverlap(t *testing.T) {
	trigger := &countingTrigger{block: make(chan struct{}), fired: make(chan struct{}, 2)}
	s := NewHarvestScheduler(staticSettings{}, trigger, nil)

	s.RunNow()
	<-trigger.fired
	assert.True(t, s.IsHarvesting())

	s.runHarvest()
	assert.Equal(t, 1, trigger.count(), "overlapping run is skipped")

	close(trigger.block)
	assert.Eventually(t, func() bool { return !s.IsHarvesting() }, 2*time.Second, 10*time.Millisecond)
}

type stubHarvester struct{ err error }

func (h stubHarvester) Harvest(context.Context) (importers.Result, error) {
	return importers.Result{}, h.err
}

func TestDirectTrigger(t *testing.T) {
	assert.NoError(t, DirectTrigger{Harvester: stubHarvester{}}.TriggerHarvest(context.Background(), "manual"))

	err := DirectTrigger{Harvester: stubHarvester{err: errors.New("locked")}}.TriggerHarvest(context.Background(), "manual")
	assert.ErrorContains(t, err, "locked")
}

type signalHarvester chan struct{}

func (h signalHarvester) Harvest(context.Context) (importers.Result, error) {
	h <- struct{}{}
	return importers.Result{}, nil
}

func TestQueueTrigger_RunsHarvestTask(t *testing.T) {
	cfg := tasks.DefaultConfig()
	cfg.Workers = 1
	client, err := tasks.NewClient(filepath.Join(t.TempDir(), "pagekeeper.db"), cfg, nil)
	require.NoError(t, err)
	defer client.Close()

	harvested := make(signalHarvester, 1)
	client.Register(tasks.NewHarvestHistoryQueue(harvested, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	require.NoError(t, QueueTrigger{Tasks: client}.TriggerHarvest(ctx, "schedule"))

	select {
	case <-harvested:
	case <-time.After(5 * time.Second):
		t.Fatal("harvest task was not executed")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	client.Stop(stopCtx)
}
