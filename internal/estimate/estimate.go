// Package estimate computes how much of the history import is done.
package estimate

import (
	"context"
	"fmt"

	"github.com/mrlokans/pagekeeper/internal/entities"
)

// WorthyCounter counts the history items a harvest of [start, end) would import.
type WorthyCounter interface {
	Count(ctx context.Context, start, end int64) (int, error)
}

type PageCounter interface {
	CountPages(ctx context.Context) (int64, error)
}

type StatusCounter interface {
	CountByStatus(ctx context.Context, importType entities.ImportType, status entities.ImportStatus) (int64, error)
}

// Estimate splits the import into pages already fully saved and work left.
type Estimate struct {
	Completed int64 `json:"completed"`
	Remaining int64 `json:"remaining"`
}

type Calculator struct {
	source WorthyCounter
	pages  PageCounter
	queue  StatusCounter
}

func NewCalculator(source WorthyCounter, pages PageCounter, queue StatusCounter) *Calculator {
	return &Calculator{source: source, pages: pages, queue: queue}
}

// Estimate returns
//
//	completed = pages - pending
//	remaining = worthy items in [start, end) + pending
//
// A pending record's page is a stub until its content is fetched, so it
// counts as remaining rather than completed. Worthy items of a window that
// has already been harvested are counted on top of their pending records;
// callers display this as an upper bound. Completed is not clamped and only
// goes negative when the store is inconsistent.
func (c *Calculator) Estimate(ctx context.Context, start, end int64) (Estimate, error) {
	worthy, err := c.source.Count(ctx, start, end)
	if err != nil {
		return Estimate{}, fmt.Errorf("count history items: %w", err)
	}

	pending, err := c.queue.CountByStatus(ctx, entities.ImportTypeHistory, entities.ImportStatusPending)
	if err != nil {
		return Estimate{}, fmt.Errorf("count pending imports: %w", err)
	}

	pages, err := c.pages.CountPages(ctx)
	if err != nil {
		return Estimate{}, fmt.Errorf("count pages: %w", err)
	}

	return Estimate{
		Completed: pages - pending,
		Remaining: int64(worthy) + pending,
	}, nil
}
