package settings

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/pagekeeper/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	dbPath := filepath.Join(t.TempDir(), "settings.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	err = db.AutoMigrate(&entities.Setting{})
	require.NoError(t, err)

	return NewRepository(db)
}

func TestRepository_SetSetting_New(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	err := repo.SetSetting(ctx, entities.SettingKeyHistoryImportLastAt, "1700000000000")
	require.NoError(t, err)

	setting, err := repo.GetSetting(ctx, entities.SettingKeyHistoryImportLastAt)
	require.NoError(t, err)
	assert.Equal(t, entities.SettingKeyHistoryImportLastAt, setting.Key)
	assert.Equal(t, "1700000000000", setting.Value)
}

func TestRepository_SetSetting_Update(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.SetSetting(ctx, "harvest_schedule", "0 * * * *"))
	require.NoError(t, repo.SetSetting(ctx, "harvest_schedule", "*/5 * * * *"))

	value, found, err := repo.Get(ctx, "harvest_schedule")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "*/5 * * * *", value)

	var count int64
	require.NoError(t, repo.db.Model(&entities.Setting{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRepository_Get_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	value, found, err := repo.Get(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, value)

	_, err = repo.GetSetting(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_DeleteSetting(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.SetSetting(ctx, "to-delete", "value"))
	require.NoError(t, repo.DeleteSetting(ctx, "to-delete"))

	_, found, err := repo.Get(ctx, "to-delete")
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting a missing key is not an error.
	assert.NoError(t, repo.DeleteSetting(ctx, "nonexistent"))
}
