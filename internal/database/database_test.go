package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/pagekeeper/internal/entities"
)

func TestNewDatabase_MigratesAllTables(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := NewDatabase(dbPath, nil)
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"pages", "visits", "imports", "stored_pages", "settings", "sync_progress", "audit_events"} {
		assert.True(t, db.DB.Migrator().HasTable(table), "missing table %s", table)
	}

	assert.NoError(t, db.Ping(context.Background()))
}

func TestNewDatabase_ReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := NewDatabase(dbPath, nil)
	require.NoError(t, err)
	require.NoError(t, db.DB.Create(&entities.PageDoc{ID: "page/0000000000000001/history-1", URL: "https://example.com"}).Error)
	require.NoError(t, db.Close())

	db, err = NewDatabase(dbPath, nil)
	require.NoError(t, err)
	defer db.Close()

	var count int64
	require.NoError(t, db.DB.Model(&entities.PageDoc{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
