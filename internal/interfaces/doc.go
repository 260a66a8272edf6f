// Package interfaces documents the core abstractions used throughout the application.
//
// This package consolidates interface documentation to help contributors find
// extension points and how to implement new functionality.
//
// # Interface Categories
//
// ## History Source
//
//   - Provider: External history store (internal/history/source.go)
//   - Allower: URL filter applied before import (internal/history/source.go)
//   - ImportIndex: URLs that already have an import record (internal/history/source.go)
//
// ## Harvest Pipeline
//
//   - ItemSource: Worthy items and visits of a window (internal/importers/pipeline.go)
//   - DocumentWriter: Idempotent bulk write of pages, visits and records (internal/importers/pipeline.go)
//   - WorthyCounter, PageCounter, StatusCounter: Estimate inputs (internal/estimate/estimate.go)
//
// ## Import Sessions
//
//   - Harvester, Cursor, Queue: Harvest and pending records (internal/imports/interfaces.go)
//   - PageProcessor: The per-item fetch action (internal/imports/interfaces.go)
//   - ProgressTracker, Auditor: Session bookkeeping (internal/imports/interfaces.go)
//   - Observer, StateObserver: Batch controller events (internal/batch/observer.go)
//
// ## Background Work
//
//   - HistoryHarvester, AuditEventCleaner: Task processors (internal/tasks/)
//   - HarvestSettings, Trigger: Cron scheduler inputs (internal/scheduler/harvest.go)
//
// ## HTTP Control Channel
//
//   - SessionManager, Estimator, ImportQueue, ...: Controller dependencies (internal/http/stores.go)
//
// # Adding a New History Provider
//
// To import history from another browser (e.g., Firefox):
//
//  1. Implement Provider in internal/history/
//
//     type FirefoxReader struct {
//         db *sql.DB
//     }
//
//     func (r *FirefoxReader) Search(ctx context.Context, start, end int64) ([]Item, error)
//     func (r *FirefoxReader) GetVisits(ctx context.Context, url string) ([]Visit, error)
//
//  2. Add a compile-time check to checks.go:
//
//     var _ history.Provider = (*history.FirefoxReader)(nil)
//
//  3. Choose the reader in entrypoint.NewApp
//
// Times cross the Provider boundary as ms since the Unix epoch; converting from
// the browser's own epoch is the reader's job.
//
// # Adding a New Per-Page Action
//
// The session runs one PageProcessor per pending record. To do more than
// fetch and store (e.g., summarise the page), wrap the fetcher:
//
//	type summarisingProcessor struct {
//	    next imports.PageProcessor
//	}
//
//	func (p summarisingProcessor) Process(ctx context.Context, url string) error {
//	    if err := p.next.Process(ctx, url); err != nil {
//	        return err
//	    }
//	    // ...
//	}
//
// A returned error marks the record failed; it can be re-queued with
// POST /api/imports/failed/reset.
//
// # Adding a New Database Domain
//
//  1. Create sub-package: internal/database/<domain>/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Add the model to database.Models
//
//  4. Add compile-time check:
//
//     var _ SomeStore = (*Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
