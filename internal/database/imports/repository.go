// Package imports provides database operations for the import queue: one
// record per imported page, tracking whether its content fetch is pending,
// succeeded or failed.
//
// # Usage
//
//	repo := imports.NewRepository(db)
//	pending, err := repo.ListPending(ctx, entities.ImportTypeHistory)
package imports

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/mrlokans/pagekeeper/internal/entities"
)

const maxErrorLen = 500

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByStatus returns import records of one type and status, oldest first.
func (r *Repository) ListByStatus(ctx context.Context, importType entities.ImportType, status entities.ImportStatus) ([]entities.ImportDoc, error) {
	var docs []entities.ImportDoc
	err := r.db.WithContext(ctx).
		Where("type = ? AND status = ?", importType, status).
		Order("id ASC").
		Find(&docs).Error
	return docs, err
}

// ListPending returns the records still waiting for their content fetch.
func (r *Repository) ListPending(ctx context.Context, importType entities.ImportType) ([]entities.ImportDoc, error) {
	return r.ListByStatus(ctx, importType, entities.ImportStatusPending)
}

// Get retrieves a record by id.
func (r *Repository) Get(ctx context.Context, id string) (*entities.ImportDoc, error) {
	var doc entities.ImportDoc
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// SetStatus loads a record, sets its status and saves it back. reason is kept
// for failures and cleared otherwise.
func (r *Repository) SetStatus(ctx context.Context, id string, status entities.ImportStatus, reason string) error {
	doc, err := r.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load import %s: %w", id, err)
	}

	doc.Status = status
	doc.Error = ""
	if status == entities.ImportStatusFail {
		doc.Error = truncate(reason, maxErrorLen)
	}
	doc.UpdatedAt = time.Now()

	if err := r.db.WithContext(ctx).Save(doc).Error; err != nil {
		return fmt.Errorf("save import %s: %w", id, err)
	}
	return nil
}

// ImportedURLs returns every URL that already has a record of the given type,
// whatever its status.
func (r *Repository) ImportedURLs(ctx context.Context, importType entities.ImportType) (map[string]struct{}, error) {
	var urls []string
	err := r.db.WithContext(ctx).Model(&entities.ImportDoc{}).
		Where("type = ?", importType).
		Distinct().
		Pluck("url", &urls).Error
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		set[u] = struct{}{}
	}
	return set, nil
}

// CountByStatus counts records of one type and status.
func (r *Repository) CountByStatus(ctx context.Context, importType entities.ImportType, status entities.ImportStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.ImportDoc{}).
		Where("type = ? AND status = ?", importType, status).
		Count(&count).Error
	return count, err
}

type statusCount struct {
	Type   entities.ImportType
	Status entities.ImportStatus
	Count  int
}

// Counts tallies the whole queue per type: totals, failures and successes.
func (r *Repository) Counts(ctx context.Context) (entities.ImportCounts, error) {
	var rows []statusCount
	err := r.db.WithContext(ctx).Model(&entities.ImportDoc{}).
		Select("type, status, COUNT(*) AS count").
		Group("type, status").
		Scan(&rows).Error
	if err != nil {
		return entities.ImportCounts{}, err
	}

	var counts entities.ImportCounts
	for _, row := range rows {
		counts.Add(row.Type, row.Status, row.Count)
	}
	return counts, nil
}

// ResetFailed puts failed records of a type back to pending so the next
// session retries them. Returns the number of records reset.
func (r *Repository) ResetFailed(ctx context.Context, importType entities.ImportType) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entities.ImportDoc{}).
		Where("type = ? AND status = ?", importType, entities.ImportStatusFail).
		Updates(map[string]any{
			"status":     entities.ImportStatusPending,
			"error":      "",
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

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
