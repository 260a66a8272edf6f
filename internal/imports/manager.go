package imports

import (
	"context"
	"errors"
	"sync"

	"github.com/mrlokans/pagekeeper/internal/batch"
)

var (
	// ErrNoSession is returned when no import session is open.
	ErrNoSession = errors.New("no import session")
	// ErrSessionActive is returned when opening a session while another one
	// is running or paused.
	ErrSessionActive = errors.New("import session already active")
)

// Manager owns the session the control channel talks to. At most one
// session is open at a time.
type Manager struct {
	orchestrator *Orchestrator

	mu      sync.Mutex
	current *Session
}

func NewManager(o *Orchestrator) *Manager {
	return &Manager{orchestrator: o}
}

// Open replaces an idle or stopped session with a fresh one.
func (m *Manager) Open(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		switch m.current.State() {
		case batch.StateRunning, batch.StatePaused:
			return nil, ErrSessionActive
		}
		if err := m.current.Close(ctx); err != nil {
			return nil, err
		}
		m.current = nil
	}

	s, err := m.orchestrator.OpenSession(ctx)
	if err != nil {
		return nil, err
	}
	m.current = s
	return s, nil
}

func (m *Manager) Current() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, ErrNoSession
	}
	return m.current, nil
}

// Close stops and drains the current session.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	s := m.current
	m.current = nil
	m.mu.Unlock()

	if s == nil {
		return ErrNoSession
	}
	return s.Close(ctx)
}

// Shutdown closes the current session if there is one.
func (m *Manager) Shutdown(ctx context.Context) error {
	if err := m.Close(ctx); err != nil && !errors.Is(err, ErrNoSession) {
		return err
	}
	return nil
}
