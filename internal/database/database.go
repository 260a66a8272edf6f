package database

import (
	"context"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mrlokans/pagekeeper/internal/entities"
	"github.com/mrlokans/pagekeeper/internal/logger"
)

// Models lists every table the service owns, in migration order.
var Models = []any{
	&entities.PageDoc{},
	&entities.VisitDoc{},
	&entities.ImportDoc{},
	&entities.StoredPage{},
	&entities.Setting{},
	&entities.SyncProgress{},
	&entities.AuditEvent{},
}

type Database struct {
	DB *gorm.DB
}

// NewDatabase opens the sqlite document store and migrates it.
func NewDatabase(dbPath string, log *logger.Logger) (*Database, error) {
	if log == nil {
		log = logger.Nop()
	}

	// WAL lets the session's status writes run while HTTP handlers read.
	dsn := dbPath + "?_journal=WAL&_busy_timeout=5000&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: log.Gorm(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(Models...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.WithField("path", dbPath).Info("Database initialized")

	return &Database{DB: db}, nil
}

// Ping checks the underlying connection.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
