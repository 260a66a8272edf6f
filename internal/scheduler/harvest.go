// Package scheduler triggers background history harvests on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/pagekeeper/internal/logger"
	"github.com/mrlokans/pagekeeper/internal/settingsstore"
)

// HarvestSettings supplies the effective harvest configuration.
type HarvestSettings interface {
	GetHarvestConfig(ctx context.Context) settingsstore.HarvestConfig
}

// Trigger starts one harvest. Trigger names the caller for the logs.
type Trigger interface {
	TriggerHarvest(ctx context.Context, trigger string) error
}

// HarvestScheduler fires a Trigger on the configured cron schedule.
type HarvestScheduler struct {
	settings HarvestSettings
	trigger  Trigger
	log      *logger.Logger

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	harvesting bool
	cancelFunc context.CancelFunc
}

func NewHarvestScheduler(settings HarvestSettings, trigger Trigger, log *logger.Logger) *HarvestScheduler {
	if log == nil {
		log = logger.Nop()
	}
	return &HarvestScheduler{
		settings: settings,
		trigger:  trigger,
		log:      log.Component("scheduler"),
		cron:     cron.New(cron.WithParser(settingsstore.ScheduleParser)),
	}
}

// Start schedules harvesting if it is enabled. The scheduler stops when ctx
// is cancelled.
func (s *HarvestScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	config := s.settings.GetHarvestConfig(ctx)
	if !config.Enabled {
		s.log.Info("Harvest scheduler disabled")
		return nil
	}

	if err := settingsstore.ValidateCronSchedule(config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", config.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(config.Schedule, s.runHarvest)
	if err != nil {
		return fmt.Errorf("failed to schedule harvest job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(context.WithoutCancel(ctx))

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := settingsstore.GetNextRunTime(config.Schedule, time.Now())
	s.log.WithFields(logger.Fields{
		"schedule":    config.Schedule,
		"description": settingsstore.GetCronDescription(config.Schedule),
		"next_run":    nextRun,
	}).Info("Harvest scheduler started")

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-cancelCtx.Done():
		}
	}()

	return nil
}

// Stop waits for a running job and stops the scheduler.
func (s *HarvestScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)

	s.cancelFunc()
	s.cancelFunc = nil
	s.isRunning = false

	s.log.Info("Harvest scheduler stopped")
}

// Reschedule applies changed settings. ctx is usually a request context, so
// the restarted scheduler is detached from its cancellation.
func (s *HarvestScheduler) Reschedule(ctx context.Context) error {
	s.Stop()
	return s.Start(context.WithoutCancel(ctx))
}

// RunNow triggers a harvest immediately, outside the schedule.
func (s *HarvestScheduler) RunNow() {
	go s.runHarvest()
}

func (s *HarvestScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// IsHarvesting reports whether a triggered harvest is in progress.
func (s *HarvestScheduler) IsHarvesting() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.harvesting
}

// GetNextRunTime returns when the next harvest will occur.
func (s *HarvestScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *HarvestScheduler) runHarvest() {
	s.mu.Lock()
	if s.harvesting {
		s.mu.Unlock()
		s.log.Info("Harvest skipped, previous one still running")
		return
	}
	s.harvesting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.harvesting = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	start := time.Now()
	if err := s.trigger.TriggerHarvest(ctx, "schedule"); err != nil {
		s.log.WithError(err).Error("Scheduled harvest failed")
		return
	}
	s.log.WithField(logger.FieldDurationMs, time.Since(start).Milliseconds()).Info("Scheduled harvest triggered")
}
