package audit

import (
	"encoding/json"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mrlokans/pagekeeper/internal/database/audit"
	"github.com/mrlokans/pagekeeper/internal/entities"
	"github.com/mrlokans/pagekeeper/internal/logger"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo *audit.Repository
	log  *logger.Logger
	wg   sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, log: log.Component("audit")}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.Save(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.Save(event); err != nil {
			s.log.WithError(err).WithField("action", event.Action).Warn("failed to log audit event")
		}
	}()
}

// Wait blocks until every LogAsync write has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// HarvestStats is what a history harvest wrote. The document counts mirror
// documents.WriteResult.
type HarvestStats struct {
	Items   int   `json:"items"`
	Pages   int64 `json:"pages"`
	Visits  int64 `json:"visits"`
	Imports int64 `json:"imports"`
	Skipped int64 `json:"skipped"`
}

// LogHarvest records a history harvest.
func (s *Service) LogHarvest(description string, stats HarvestStats, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventHarvest,
		Action:      "history_harvest",
		Description: description,
		Metadata:    marshal(stats),
		Status:      entities.AuditStatusSuccess,
	}
	markFailed(event, err)
	s.LogAsync(event)
}

// LogSession records a batch session transition such as start, stop or complete.
func (s *Service) LogSession(action, description string, metadata map[string]any, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventSession,
		Action:      "session_" + action,
		Description: description,
		Status:      entities.AuditStatusSuccess,
	}
	if len(metadata) > 0 {
		event.Metadata = marshal(metadata)
	}
	markFailed(event, err)
	s.LogAsync(event)
}

// LogReset records failed import records being re-queued.
func (s *Service) LogReset(importType entities.ImportType, count int64, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventReset,
		Action:      string(importType) + "_failed_reset",
		Description: "Re-queued failed " + string(importType) + " imports",
		Metadata:    marshal(map[string]any{"count": count}),
		Status:      entities.AuditStatusSuccess,
	}
	markFailed(event, err)
	s.LogAsync(event)
}

// LogSettings records a settings change event.
func (s *Service) LogSettings(action, description string) {
	s.LogAsync(&entities.AuditEvent{
		EventType:   entities.AuditEventSettings,
		Action:      action,
		Description: description,
		Status:      entities.AuditStatusSuccess,
	})
}

// Events returns a page of events, newest first. Empty filters match all.
func (s *Service) Events(eventType entities.AuditEventType, status entities.AuditStatus, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.Find(audit.Query{Type: eventType, Status: status, Limit: limit, Offset: offset})
}

// PruneEvents deletes events older than retention, optionally sparing failures.
func (s *Service) PruneEvents(retention time.Duration, keepFailed bool) (int64, error) {
	return s.repo.Prune(time.Now().Add(-retention), keepFailed)
}

func markFailed(event *entities.AuditEvent, err error) {
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}
}

func marshal(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

// truncate shortens s to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
