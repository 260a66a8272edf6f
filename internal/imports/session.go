package imports

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mrlokans/pagekeeper/internal/batch"
	"github.com/mrlokans/pagekeeper/internal/entities"
	"github.com/mrlokans/pagekeeper/internal/logger"
)

// Item is one pending import record handed to the fetch action.
type Item struct {
	ImportID string
	URL      string
}

// Summary is a point-in-time view of a session.
type Summary struct {
	ID        string                `json:"id"`
	State     batch.State           `json:"state"`
	Total     int                   `json:"total"`
	Processed int                   `json:"processed"`
	Succeeded int                   `json:"succeeded"`
	Failed    int                   `json:"failed"`
	Init      entities.ImportCounts `json:"init"`
}

// Session runs one batch over the pending import records. Every finished
// item is written back to the queue before its NEXT event is published.
type Session struct {
	id         string
	ctx        context.Context
	cancel     context.CancelFunc
	controller *batch.Controller[Item]
	queue      Queue
	progress   ProgressTracker
	auditor    Auditor
	log        *logger.Logger
	events     *eventLog
	init       entities.ImportCounts
	total      int

	mu        sync.Mutex
	started   bool
	processed int
	succeeded int
	failed    int

	closeOnce sync.Once
}

func (s *Session) ID() string { return s.id }

// Init returns the counts announced when the session opened.
func (s *Session) Init() entities.ImportCounts { return s.init }

func (s *Session) State() batch.State { return s.controller.State() }

func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summary{
		ID:        s.id,
		State:     s.controller.State(),
		Total:     s.total,
		Processed: s.processed,
		Succeeded: s.succeeded,
		Failed:    s.failed,
		Init:      s.init,
	}
}

// Handle applies a control command. Errors wrap batch.ErrUnknownCommand or
// batch.ErrInvalidTransition and leave the session unchanged.
func (s *Session) Handle(cmd batch.Command) error {
	err := s.controller.Handle(cmd)
	if err != nil {
		s.log.WithError(err).WithField(logger.FieldCommand, cmd).Warn("Command rejected")
		return err
	}
	s.log.WithField(logger.FieldCommand, cmd).Info("Command applied")
	return nil
}

// EventsSince returns the events numbered from onwards, waiting for the next
// one if there are none yet. It returns ErrSessionClosed after the last
// event of a closed session.
func (s *Session) EventsSince(ctx context.Context, from int) ([]Event, error) {
	return s.events.since(ctx, from)
}

// Events streams every event of the session from the start. The channel is
// closed after the session is closed and its last event was delivered, or
// as soon as ctx is done. Readers that stop early must cancel ctx.
func (s *Session) Events(ctx context.Context) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		next := 0
		for {
			evs, err := s.events.since(ctx, next)
			if err != nil {
				return
			}
			for _, ev := range evs {
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
			next += len(evs)
		}
	}()
	return out
}

// Wait blocks until the session is quiescent: nothing in flight and every
// event published.
func (s *Session) Wait(ctx context.Context) error {
	return s.controller.Wait(ctx)
}

// Close stops the session, lets in-flight items finish and closes the event
// stream. Records not started stay pending for a later session.
func (s *Session) Close(ctx context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		if stopErr := s.controller.Stop(); stopErr != nil && !errors.Is(stopErr, batch.ErrInvalidTransition) {
			err = stopErr
		}
		if waitErr := s.controller.Wait(ctx); waitErr != nil {
			err = fmt.Errorf("drain session: %w", waitErr)
		}
		s.cancel()
		s.events.close()
		s.log.Info("Import session closed")
	})
	return err
}

// Observer callbacks. The controller calls them one at a time.

func (s *Session) Next(item Item) {
	s.finish(item, nil)
}

func (s *Session) Error(item Item, err error) {
	s.finish(item, err)
}

func (s *Session) finish(item Item, itemErr error) {
	status, reason := entities.ImportStatusSuccess, ""
	if itemErr != nil {
		status, reason = entities.ImportStatusFail, itemErr.Error()
	}

	if err := s.queue.SetStatus(s.ctx, item.ImportID, status, reason); err != nil {
		s.log.WithError(err).WithField(logger.FieldURL, item.URL).Error("Failed to update import record")
	}

	s.mu.Lock()
	s.processed++
	if itemErr != nil {
		s.failed++
	} else {
		s.succeeded++
	}
	processed, succeeded, failed := s.processed, s.succeeded, s.failed
	s.mu.Unlock()

	if s.progress != nil {
		if err := s.progress.UpdateProgress(s.ctx, processed, succeeded, failed, 0, item.URL); err != nil {
			s.log.WithError(err).Warn("Failed to update session progress")
		}
	}

	if itemErr != nil {
		s.log.WithError(itemErr).WithField(logger.FieldURL, item.URL).Debug("Import failed")
	}
	s.events.append(Event{Type: EventNext, URL: item.URL, Error: reason})
}

func (s *Session) Complete() {
	s.mu.Lock()
	metadata := map[string]any{"total": s.total, "succeeded": s.succeeded, "failed": s.failed}
	s.mu.Unlock()

	if s.progress != nil {
		if err := s.progress.CompleteSync(s.ctx, true, ""); err != nil {
			s.log.WithError(err).Warn("Failed to complete session progress")
		}
	}
	if s.auditor != nil {
		s.auditor.LogSession("complete", fmt.Sprintf("Imported %d of %d pages", metadata["succeeded"], metadata["total"]), metadata, nil)
	}
	s.log.WithFields(logger.Fields(metadata)).Info("Import session completed")
	s.events.append(Event{Type: EventComplete})
}

func (s *Session) StateChanged(from, to batch.State) {
	s.events.append(Event{Type: EventState, State: to})

	if s.progress == nil {
		return
	}

	var err error
	switch to {
	case batch.StateRunning:
		s.mu.Lock()
		first := !s.started
		s.started = true
		s.mu.Unlock()
		if first {
			err = s.progress.StartSync(s.ctx, s.total)
		} else {
			err = s.progress.SetStatus(s.ctx, entities.SyncStatusRunning)
		}
	case batch.StatePaused:
		err = s.progress.SetStatus(s.ctx, entities.SyncStatusPaused)
	case batch.StateStopped:
		err = s.progress.SetStatus(s.ctx, entities.SyncStatusStopped)
		if s.auditor != nil {
			s.mu.Lock()
			meta := map[string]any{"total": s.total, "processed": s.processed}
			s.mu.Unlock()
			s.auditor.LogSession("stopped", "Import session stopped", meta, nil)
		}
	}
	if err != nil {
		s.log.WithError(err).WithField(logger.FieldState, to).Warn("Failed to record session state")
	}
}
