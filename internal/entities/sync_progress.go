package entities

import "time"

// SyncType names the kind of session a SyncProgress row mirrors. There is one
// row per type.
type SyncType string

const SyncTypeHistoryImport SyncType = "history_import"

// SyncStatus follows the batch controller: running, paused and stopped map to
// its states, completed and failed are how a session ended.
type SyncStatus string

const (
	SyncStatusRunning   SyncStatus = "running"
	SyncStatusPaused    SyncStatus = "paused"
	SyncStatusStopped   SyncStatus = "stopped"
	SyncStatusCompleted SyncStatus = "completed"
	SyncStatusFailed    SyncStatus = "failed"
)

// SyncProgress is the persisted view of the last import session, so a client
// connecting after a restart can see how far it got.
type SyncProgress struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	SyncType SyncType   `gorm:"size:50;uniqueIndex" json:"sync_type"`
	Status   SyncStatus `gorm:"size:20" json:"status"`

	// TotalItems is the number of pending import records when the session started.
	TotalItems int `json:"total_items"`
	Processed  int `json:"processed"`
	Succeeded  int `json:"succeeded"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`

	// CurrentItem is the URL of the page processed last.
	CurrentItem string `gorm:"size:512" json:"current_item,omitempty"`
	Error       string `gorm:"type:text" json:"error,omitempty"`

	StartedAt   time.Time  `json:"started_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (SyncProgress) TableName() string { return "sync_progress" }
