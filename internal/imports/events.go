package imports

import (
	"context"
	"errors"
	"sync"

	"github.com/mrlokans/pagekeeper/internal/batch"
	"github.com/mrlokans/pagekeeper/internal/entities"
)

type EventType string

const (
	EventInit     EventType = "INIT"
	EventNext     EventType = "NEXT"
	EventComplete EventType = "COMPLETE"
	EventState    EventType = "STATE"
)

// Event is an outbound notification of a session. Seq numbers events of a
// session from 0 so a reader can resume where it left off.
type Event struct {
	Seq    int                    `json:"seq"`
	Type   EventType              `json:"type"`
	URL    string                 `json:"url,omitempty"`
	Error  string                 `json:"error,omitempty"`
	Counts *entities.ImportCounts `json:"counts,omitempty"`
	State  batch.State            `json:"state,omitempty"`
}

// ErrSessionClosed is returned by readers once a closed session's events
// have all been read.
var ErrSessionClosed = errors.New("import session closed")

// eventLog is an append-only event list readers follow at their own pace.
// Appending never blocks on slow readers.
type eventLog struct {
	mu      sync.Mutex
	events  []Event
	closed  bool
	changed chan struct{}
}

func newEventLog() *eventLog {
	return &eventLog{changed: make(chan struct{})}
}

func (l *eventLog) append(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	ev.Seq = len(l.events)
	l.events = append(l.events, ev)
	l.notify()
}

func (l *eventLog) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.notify()
}

// notify wakes every waiting reader. Callers hold l.mu.
func (l *eventLog) notify() {
	close(l.changed)
	l.changed = make(chan struct{})
}

// since returns the events numbered from onwards, blocking until there is at
// least one.
func (l *eventLog) since(ctx context.Context, from int) ([]Event, error) {
	if from < 0 {
		from = 0
	}
	for {
		l.mu.Lock()
		if from < len(l.events) {
			out := append([]Event(nil), l.events[from:]...)
			l.mu.Unlock()
			return out, nil
		}
		if l.closed {
			l.mu.Unlock()
			return nil, ErrSessionClosed
		}
		changed := l.changed
		l.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (l *eventLog) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}
