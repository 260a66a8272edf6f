package entities

import "time"

// PageDoc is a page the user visited. Its ID is derived from the history item it was
// imported from, so importing the same item twice collides on the primary key.
type PageDoc struct {
	ID         string `gorm:"primaryKey;size:255" json:"id"`
	URL        string `gorm:"index;size:2048" json:"url"`
	Title      string `gorm:"size:1024" json:"title"`
	ImportedAt int64  `json:"imported_at,omitempty"` // ms epoch of the harvest that created it
}

func (PageDoc) TableName() string {
	return "pages"
}

// VisitDoc is a single visit to a page. ReferringVisitID is only set when the
// referring visit was imported in the same batch.
type VisitDoc struct {
	ID               string  `gorm:"primaryKey;size:255" json:"id"`
	VisitStart       int64   `json:"visit_start"`
	URL              string  `gorm:"size:2048" json:"url"`
	PageID           string  `gorm:"index;size:255" json:"page_id"`
	ReferringVisitID *string `gorm:"size:255" json:"referring_visit_id,omitempty"`
	ImportedAt       int64   `json:"imported_at,omitempty"`
}

func (VisitDoc) TableName() string {
	return "visits"
}

type ImportStatus string

const (
	ImportStatusPending ImportStatus = "pending"
	ImportStatusSuccess ImportStatus = "success"
	ImportStatusFail    ImportStatus = "fail"
)

type ImportType string

const (
	ImportTypeHistory  ImportType = "history"
	ImportTypeBookmark ImportType = "bookmark"
)

// ImportDoc tracks the content fetch for one imported page.
type ImportDoc struct {
	ID        string       `gorm:"primaryKey;size:255" json:"id"`
	Status    ImportStatus `gorm:"index;size:20" json:"status"`
	Type      ImportType   `gorm:"index;size:20" json:"type"`
	URL       string       `gorm:"index;size:2048" json:"url"`
	PageID    string       `gorm:"size:255" json:"page_id"`
	Error     string       `gorm:"size:500" json:"error,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (ImportDoc) TableName() string {
	return "imports"
}

// StoredPage holds the fetched content of a page.
type StoredPage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	URL         string    `gorm:"uniqueIndex;size:2048" json:"url"`
	Title       string    `gorm:"size:1024" json:"title"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Text        string    `gorm:"type:text" json:"-"`
	ContentHash string    `gorm:"size:64" json:"content_hash"`
	StoragePath string    `gorm:"size:1024" json:"storage_path"`
	FetchedAt   time.Time `json:"fetched_at"`
}

func (StoredPage) TableName() string {
	return "stored_pages"
}

// TypeCounts holds one tally per import type.
type TypeCounts struct {
	History  int `json:"history"`
	Bookmark int `json:"bookmark"`
}

func (c *TypeCounts) add(t ImportType, n int) {
	switch t {
	case ImportTypeHistory:
		c.History += n
	case ImportTypeBookmark:
		c.Bookmark += n
	}
}

// ImportCounts summarizes the import queue per type.
type ImportCounts struct {
	Totals  TypeCounts `json:"totals"`
	Fail    TypeCounts `json:"fail"`
	Success TypeCounts `json:"success"`
}

// Add tallies n import records of one type and status.
func (c *ImportCounts) Add(t ImportType, status ImportStatus, n int) {
	c.Totals.add(t, n)
	switch status {
	case ImportStatusFail:
		c.Fail.add(t, n)
	case ImportStatusSuccess:
		c.Success.add(t, n)
	}
}
