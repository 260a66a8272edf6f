// Package history reads the user's browsing history from an external history
// store and selects the items worth importing.
package history

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/pagekeeper/internal/entities"
	"github.com/mrlokans/pagekeeper/internal/logger"
)

// Item is one visited URL as reported by the provider. ID is the provider's
// own identifier and LastVisitTime a ms epoch.
type Item struct {
	ID            string
	URL           string
	Title         string
	LastVisitTime int64
	VisitCount    int
}

// Visit is one visit to an Item. ReferringVisitID is the provider's id of the
// visit that led here; "" or "0" means none.
type Visit struct {
	VisitID          string
	VisitTime        int64
	ReferringVisitID string
}

// HasReferrer reports whether the visit names a referring visit.
func (v Visit) HasReferrer() bool {
	return v.ReferringVisitID != "" && v.ReferringVisitID != "0"
}

// Provider is an external history store.
type Provider interface {
	// Search returns items last visited in [start, end), both ms epoch.
	Search(ctx context.Context, start, end int64) ([]Item, error)
	GetVisits(ctx context.Context, url string) ([]Visit, error)
}

// Allower decides whether a URL may be imported at all.
type Allower interface {
	IsAllowed(url string) bool
}

// ImportIndex knows which URLs already have an import record.
type ImportIndex interface {
	ImportedURLs(ctx context.Context, importType entities.ImportType) (map[string]struct{}, error)
}

const defaultConcurrency = 4

// Source wraps a Provider with the filtering rules of the history import.
type Source struct {
	provider    Provider
	allower     Allower
	index       ImportIndex
	concurrency int
	log         *logger.Logger
}

type Option func(*Source)

// WithConcurrency bounds the number of parallel visit lookups.
func WithConcurrency(n int) Option {
	return func(s *Source) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(s *Source) {
		if log != nil {
			s.log = log.Component("history")
		}
	}
}

// NewSource creates a Source. allower and index may be nil, in which case the
// corresponding filter is skipped.
func NewSource(provider Provider, allower Allower, index ImportIndex, opts ...Option) *Source {
	s := &Source{
		provider:    provider,
		allower:     allower,
		index:       index,
		concurrency: defaultConcurrency,
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchWorthyItems returns the items in [start, end) that pass the blacklist
// and have no import record yet. Items repeating an earlier URL are dropped.
func (s *Source) FetchWorthyItems(ctx context.Context, start, end int64) ([]Item, error) {
	items, err := s.provider.Search(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("search history: %w", err)
	}

	imported := map[string]struct{}{}
	if s.index != nil {
		imported, err = s.index.ImportedURLs(ctx, entities.ImportTypeHistory)
		if err != nil {
			return nil, fmt.Errorf("load imported urls: %w", err)
		}
	}

	seen := make(map[string]struct{}, len(items))
	worthy := make([]Item, 0, len(items))
	for _, item := range items {
		if s.allower != nil && !s.allower.IsAllowed(item.URL) {
			continue
		}
		if _, ok := imported[item.URL]; ok {
			continue
		}
		if _, ok := seen[item.URL]; ok {
			continue
		}
		seen[item.URL] = struct{}{}
		worthy = append(worthy, item)
	}

	s.log.WithFields(logger.Fields{
		"found":           len(items),
		logger.FieldCount: len(worthy),
	}).Debug("Filtered history items")

	return worthy, nil
}

// Count returns the number of worthy items in [start, end).
func (s *Source) Count(ctx context.Context, start, end int64) (int, error) {
	items, err := s.FetchWorthyItems(ctx, start, end)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// FetchVisits looks up the visits of every item. The result is index-aligned
// with items.
func (s *Source) FetchVisits(ctx context.Context, items []Item) ([][]Visit, error) {
	visits := make([][]Visit, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, item := range items {
		g.Go(func() error {
			v, err := s.provider.GetVisits(ctx, item.URL)
			if err != nil {
				return fmt.Errorf("visits of %s: %w", item.URL, err)
			}
			if v == nil {
				v = []Visit{}
			}
			visits[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return visits, nil
}
