package entities

import "time"

// Setting is a persisted key/value override. Values set here win over the
// environment; clearing a key falls back to it again.
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string { return "settings" }

const (
	// SettingKeyHistoryImportLastAt holds the harvest cursor: the ms epoch
	// up to which history has already been imported.
	SettingKeyHistoryImportLastAt = "history_import_last_at"

	SettingKeyHarvestEnabled  = "harvest_enabled"
	SettingKeyHarvestSchedule = "harvest_schedule"
)
