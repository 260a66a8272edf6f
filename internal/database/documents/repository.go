// Package documents provides database operations for page, visit and stored
// page documents.
package documents

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/pagekeeper/internal/docid"
	"github.com/mrlokans/pagekeeper/internal/entities"
)

const insertBatchSize = 200

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WriteResult counts the rows a bulk write actually inserted. Rows whose id
// already existed are skipped.
type WriteResult struct {
	Pages   int64 `json:"pages"`
	Visits  int64 `json:"visits"`
	Imports int64 `json:"imports"`
	Skipped int64 `json:"skipped"`
}

// BulkWrite inserts pages, visits and import records in one transaction.
// Documents whose id already exists are left untouched, so repeating a write
// is harmless.
func (r *Repository) BulkWrite(ctx context.Context, pages []entities.PageDoc, visits []entities.VisitDoc, imports []entities.ImportDoc) (WriteResult, error) {
	var res WriteResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if res.Pages, err = insertIgnore(tx, pages); err != nil {
			return fmt.Errorf("insert pages: %w", err)
		}
		if res.Visits, err = insertIgnore(tx, visits); err != nil {
			return fmt.Errorf("insert visits: %w", err)
		}
		if res.Imports, err = insertIgnore(tx, imports); err != nil {
			return fmt.Errorf("insert imports: %w", err)
		}
		return nil
	})
	if err != nil {
		return WriteResult{}, err
	}

	total := int64(len(pages) + len(visits) + len(imports))
	res.Skipped = total - res.Pages - res.Visits - res.Imports
	return res, nil
}

func insertIgnore[T any](tx *gorm.DB, rows []T) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	result := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(rows, insertBatchSize)
	return result.RowsAffected, result.Error
}

// CountPages returns the number of page documents.
func (r *Repository) CountPages(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.PageDoc{}).Count(&count).Error
	return count, err
}

// GetPage retrieves a page by id.
func (r *Repository) GetPage(ctx context.Context, id string) (*entities.PageDoc, error) {
	var page entities.PageDoc
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&page).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

// GetVisitsForPage returns the visits of a page in chronological order.
func (r *Repository) GetVisitsForPage(ctx context.Context, pageID string) ([]entities.VisitDoc, error) {
	var visits []entities.VisitDoc
	err := r.db.WithContext(ctx).Where("page_id = ?", pageID).Order("id ASC").Find(&visits).Error
	return visits, err
}

// OldestVisitTimestamp returns the visit time of the earliest stored visit.
// Visit ids sort chronologically, so this is a primary key range scan.
func (r *Repository) OldestVisitTimestamp(ctx context.Context) (int64, bool, error) {
	lo, hi := keyRange(docid.KindVisit)

	var visit entities.VisitDoc
	err := r.db.WithContext(ctx).
		Where("id >= ? AND id < ?", lo, hi).
		Order("id ASC").
		Limit(1).
		Take(&visit).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	id, err := docid.Parse(visit.ID)
	if err != nil {
		return 0, false, err
	}
	return id.Timestamp, true, nil
}

// keyRange returns the half-open id range covering every id of kind.
func keyRange(kind docid.Kind) (string, string) {
	prefix := docid.Prefix(kind)
	upper := []byte(prefix)
	upper[len(upper)-1]++
	return prefix, string(upper)
}

// SaveStoredPage inserts or replaces the stored content of a URL.
func (r *Repository) SaveStoredPage(ctx context.Context, page *entities.StoredPage) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "description", "text", "content_hash", "storage_path", "fetched_at"}),
	}).Create(page).Error
}

// GetStoredPage retrieves the stored content of a URL.
func (r *Repository) GetStoredPage(ctx context.Context, url string) (*entities.StoredPage, error) {
	var page entities.StoredPage
	if err := r.db.WithContext(ctx).Where("url = ?", url).First(&page).Error; err != nil {
		return nil, err
	}
	return &page, nil
}
