// Package audit stores the trail of harvests, import sessions, resets and
// settings changes.
package audit

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/pagekeeper/internal/entities"
)

const defaultPageSize = 50

// Query selects a page of audit events. Zero-valued filters match everything.
type Query struct {
	Type   entities.AuditEventType
	Status entities.AuditStatus
	Limit  int
	Offset int
}

func (q Query) scope(db *gorm.DB) *gorm.DB {
	if q.Type != "" {
		db = db.Where("event_type = ?", q.Type)
	}
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	return db
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts an event, stamping it with the current time when unset.
func (r *Repository) Save(event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return r.db.Create(event).Error
}

// Find returns the newest events matching q along with the total match count.
func (r *Repository) Find(q Query) ([]entities.AuditEvent, int64, error) {
	var total int64
	if err := q.scope(r.db.Model(&entities.AuditEvent{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if q.Limit <= 0 {
		q.Limit = defaultPageSize
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	var events []entities.AuditEvent
	err := q.scope(r.db).
		Order("created_at DESC, id DESC").
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&events).Error
	return events, total, err
}

// Prune deletes events created before cutoff. With keepFailed, failed events
// survive so a broken harvest stays visible after the retention window.
func (r *Repository) Prune(cutoff time.Time, keepFailed bool) (int64, error) {
	query := r.db.Where("created_at < ?", cutoff)
	if keepFailed {
		query = query.Where("status <> ?", entities.AuditStatusFailed)
	}
	result := query.Delete(&entities.AuditEvent{})
	return result.RowsAffected, result.Error
}
