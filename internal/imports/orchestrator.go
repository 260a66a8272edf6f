// Package imports coordinates a history import: it harvests new history into
// documents and import records, then drives the pending records through the
// fetch action in a controllable session.
package imports

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mrlokans/pagekeeper/internal/audit"
	"github.com/mrlokans/pagekeeper/internal/batch"
	"github.com/mrlokans/pagekeeper/internal/entities"
	"github.com/mrlokans/pagekeeper/internal/importers"
	"github.com/mrlokans/pagekeeper/internal/logger"
)

type Deps struct {
	Harvester Harvester
	Cursor    Cursor
	Queue     Queue
	Processor PageProcessor
	Progress  ProgressTracker
	Auditor   Auditor
	Logger    *logger.Logger
}

type Orchestrator struct {
	harvester   Harvester
	cursor      Cursor
	queue       Queue
	processor   PageProcessor
	progress    ProgressTracker
	auditor     Auditor
	log         *logger.Logger
	concurrency int
	now         func() time.Time

	// harvestMu keeps concurrent harvests from racing on the cursor.
	harvestMu sync.Mutex
}

// NewOrchestrator wires the collaborators. Progress and Auditor are optional.
func NewOrchestrator(deps Deps, concurrency int) *Orchestrator {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Orchestrator{
		harvester:   deps.Harvester,
		cursor:      deps.Cursor,
		queue:       deps.Queue,
		processor:   deps.Processor,
		progress:    deps.Progress,
		auditor:     deps.Auditor,
		log:         log.Component("imports"),
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Harvest imports history visited since the previous harvest. The cursor only
// advances when the write succeeded, so a failed harvest is retried in full
// next time.
func (o *Orchestrator) Harvest(ctx context.Context) (importers.Result, error) {
	o.harvestMu.Lock()
	defer o.harvestMu.Unlock()

	last, err := o.cursor.LastHarvestAt(ctx)
	if err != nil {
		return importers.Result{}, err
	}
	now := o.now().UnixMilli()

	result, err := o.harvester.Harvest(ctx, last, now)
	if err != nil {
		o.logHarvest(last, now, result, err)
		return result, fmt.Errorf("harvest history: %w", err)
	}

	if err := o.cursor.SetLastHarvestAt(ctx, now); err != nil {
		o.logHarvest(last, now, result, err)
		return result, fmt.Errorf("store harvest cursor: %w", err)
	}

	o.logHarvest(last, now, result, nil)
	return result, nil
}

func (o *Orchestrator) logHarvest(start, end int64, result importers.Result, err error) {
	if o.auditor == nil {
		return
	}
	desc := fmt.Sprintf("Harvested %d history items (%d new pages)", result.Items, result.Written.Pages)
	if err != nil {
		desc = "History harvest failed"
	}
	o.auditor.LogHarvest(desc, audit.HarvestStats{
		Items:   result.Items,
		Pages:   result.Written.Pages,
		Visits:  result.Written.Visits,
		Imports: result.Written.Imports,
		Skipped: result.Written.Skipped,
	}, err)
	o.log.WithFields(logger.Fields{
		"window_start": start,
		"window_end":   end,
	}).Debug("Harvest audited")
}

// OpenSession harvests, then loads every pending history record into a new
// Idle session. The session announces the queue counts with an INIT event.
func (o *Orchestrator) OpenSession(ctx context.Context) (*Session, error) {
	if _, err := o.Harvest(ctx); err != nil {
		return nil, err
	}

	counts, err := o.queue.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count import records: %w", err)
	}

	pending, err := o.queue.ListPending(ctx, entities.ImportTypeHistory)
	if err != nil {
		return nil, fmt.Errorf("list pending imports: %w", err)
	}

	items := make([]Item, 0, len(pending))
	for _, rec := range pending {
		items = append(items, Item{ImportID: rec.ID, URL: rec.URL})
	}

	s := o.newSession(ctx, counts, items)
	o.log.WithFields(logger.Fields{
		logger.FieldSessionID: s.ID(),
		logger.FieldCount:     len(items),
	}).Info("Import session opened")
	return s, nil
}

func (o *Orchestrator) newSession(ctx context.Context, counts entities.ImportCounts, items []Item) *Session {
	// The session outlives the request that opened it.
	sessionCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	s := &Session{
		id:       fmt.Sprintf("%d", o.now().UnixNano()),
		ctx:      sessionCtx,
		cancel:   cancel,
		queue:    o.queue,
		progress: o.progress,
		auditor:  o.auditor,
		events:   newEventLog(),
		init:     counts,
		total:    len(items),
	}
	s.log = o.log.WithFields(logger.Fields{logger.FieldSessionID: s.id})

	s.controller = batch.New(o.action(),
		batch.WithConcurrency[Item](o.concurrency),
		batch.WithKey(func(it Item) string { return it.ImportID }),
		batch.WithContext[Item](sessionCtx),
	)
	s.controller.Subscribe(s)
	s.controller.Enqueue(items...)

	s.events.append(Event{Type: EventInit, Counts: &counts})
	return s
}

func (o *Orchestrator) action() batch.Action[Item] {
	return func(ctx context.Context, item Item) error {
		return o.processor.Process(ctx, item.URL)
	}
}
