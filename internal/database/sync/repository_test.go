package sync

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/pagekeeper/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	dbPath := filepath.Join(t.TempDir(), "sync.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	err = db.AutoMigrate(&entities.SyncProgress{})
	require.NoError(t, err)

	return NewRepository(db, entities.SyncTypeHistoryImport)
}

func TestRepository_StartSync(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	err := repo.StartSync(ctx, 100)
	require.NoError(t, err)

	progress, err := repo.GetSyncProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.SyncTypeHistoryImport, progress.SyncType)
	assert.Equal(t, entities.SyncStatusRunning, progress.Status)
	assert.Equal(t, 100, progress.TotalItems)
	assert.Equal(t, 0, progress.Processed)
}

func TestRepository_StartSync_Reset(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.StartSync(ctx, 50))
	require.NoError(t, repo.UpdateProgress(ctx, 25, 20, 5, 0, "https://example.com/a"))

	require.NoError(t, repo.StartSync(ctx, 100))

	progress, err := repo.GetSyncProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, progress.TotalItems)
	assert.Equal(t, 0, progress.Processed)
	assert.Equal(t, "", progress.CurrentItem)
}

func TestRepository_UpdateProgress(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.StartSync(ctx, 100))
	require.NoError(t, repo.UpdateProgress(ctx, 50, 45, 3, 2, "https://example.com/current"))

	progress, err := repo.GetSyncProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, progress.Processed)
	assert.Equal(t, 45, progress.Succeeded)
	assert.Equal(t, 3, progress.Failed)
	assert.Equal(t, 2, progress.Skipped)
	assert.Equal(t, "https://example.com/current", progress.CurrentItem)
}

func TestRepository_SetStatus(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.StartSync(ctx, 5))
	require.NoError(t, repo.UpdateProgress(ctx, 2, 2, 0, 0, "https://example.com/b"))
	require.NoError(t, repo.SetStatus(ctx, entities.SyncStatusPaused))

	progress, err := repo.GetSyncProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.SyncStatusPaused, progress.Status)
	assert.Equal(t, 2, progress.Processed, "counters survive a pause")
}

func TestRepository_CompleteSync_Success(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.StartSync(ctx, 10))
	require.NoError(t, repo.CompleteSync(ctx, true, ""))

	progress, err := repo.GetSyncProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.SyncStatusCompleted, progress.Status)
	assert.NotNil(t, progress.CompletedAt)
}

func TestRepository_CompleteSync_Failure(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.StartSync(ctx, 10))
	require.NoError(t, repo.CompleteSync(ctx, false, "some error occurred"))

	progress, err := repo.GetSyncProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.SyncStatusFailed, progress.Status)
	assert.Equal(t, "some error occurred", progress.Error)
}

func TestRepository_StartSync_SingleRowPerType(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.StartSync(ctx, 3))
	require.NoError(t, repo.CompleteSync(ctx, false, "boom"))
	require.NoError(t, repo.StartSync(ctx, 7))

	var rows []entities.SyncProgress
	require.NoError(t, repo.db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, 7, rows[0].TotalItems)
	assert.Equal(t, entities.SyncStatusRunning, rows[0].Status)
	assert.Empty(t, rows[0].Error)
	assert.Nil(t, rows[0].CompletedAt)
}

func TestRepository_MarkInterrupted(t *testing.T) {
	ctx := context.Background()

	age := func(t *testing.T, repo *Repository, d time.Duration) {
		require.NoError(t, repo.db.Model(&entities.SyncProgress{}).
			Where("sync_type = ?", entities.SyncTypeHistoryImport).
			Update("updated_at", time.Now().Add(-d)).Error)
	}

	tests := []struct {
		name    string
		prepare func(t *testing.T, repo *Repository)
		marked  bool
		status  entities.SyncStatus
	}{
		{
			name:    "no session",
			prepare: func(*testing.T, *Repository) {},
		},
		{
			name:    "fresh running session",
			prepare: func(t *testing.T, repo *Repository) { require.NoError(t, repo.StartSync(ctx, 4)) },
			status:  entities.SyncStatusRunning,
		},
		{
			name: "stale running session",
			prepare: func(t *testing.T, repo *Repository) {
				require.NoError(t, repo.StartSync(ctx, 4))
				age(t, repo, StaleAfter+time.Minute)
			},
			marked: true,
			status: entities.SyncStatusFailed,
		},
		{
			name: "paused session",
			prepare: func(t *testing.T, repo *Repository) {
				require.NoError(t, repo.StartSync(ctx, 4))
				require.NoError(t, repo.SetStatus(ctx, entities.SyncStatusPaused))
			},
			marked: true,
			status: entities.SyncStatusFailed,
		},
		{
			name: "completed session",
			prepare: func(t *testing.T, repo *Repository) {
				require.NoError(t, repo.StartSync(ctx, 4))
				require.NoError(t, repo.CompleteSync(ctx, true, ""))
				age(t, repo, time.Hour)
			},
			status: entities.SyncStatusCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := setupTestDB(t)
			tt.prepare(t, repo)

			marked, err := repo.MarkInterrupted(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.marked, marked)

			if tt.status == "" {
				return
			}
			progress, err := repo.GetSyncProgress(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.status, progress.Status)
			if tt.marked {
				assert.Equal(t, "session was interrupted", progress.Error)
				assert.NotNil(t, progress.CompletedAt)
			}
		})
	}
}
