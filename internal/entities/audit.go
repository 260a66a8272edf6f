package entities

import "time"

// AuditEventType groups audit events for filtering.
type AuditEventType string

const (
	AuditEventHarvest  AuditEventType = "harvest"  // scheduled or manual history harvests
	AuditEventSession  AuditEventType = "session"  // import session start, stop and completion
	AuditEventReset    AuditEventType = "reset"    // failed imports re-queued
	AuditEventSettings AuditEventType = "settings" // harvest settings changed
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

// AuditEvent is one entry of the audit trail. Metadata carries JSON such as
// harvest counts or session totals.
type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	EventType   AuditEventType `gorm:"index;size:50" json:"event_type"`
	Action      string         `gorm:"size:100" json:"action"`
	Description string         `gorm:"size:500" json:"description"`
	Metadata    string         `gorm:"type:text" json:"metadata,omitempty"`
	Status      AuditStatus    `gorm:"index;size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string { return "audit_events" }
