// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── documents/       # Pages, visits and stored page content
//	├── imports/         # Import queue (pending/success/fail records)
//	├── sync/            # Session progress tracking
//	├── settings/        # Key/value settings
//	└── audit/           # Audit log
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./pagekeeper.db", log)
//
//	docsRepo := documents.NewRepository(db.DB)
//	importsRepo := imports.NewRepository(db.DB)
//
//	res, err := docsRepo.BulkWrite(ctx, pages, visits, records)
//	pending, err := importsRepo.ListPending(ctx, entities.ImportTypeHistory)
//
// # Document identifiers
//
// Pages, visits and import records are keyed by ids from the docid package.
// Ids of one kind sort chronologically, so "oldest" and "newest" queries are
// primary key range scans rather than timestamp index lookups.
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Add the model to database.Models
//  5. Add compile-time interface checks in internal/interfaces
package database
