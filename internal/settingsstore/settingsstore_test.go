package settingsstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/pagekeeper/internal/database"
	"github.com/mrlokans/pagekeeper/internal/database/settings"
	"github.com/mrlokans/pagekeeper/internal/entities"
)

func setupStore(t *testing.T, env map[string]string) (*SettingsStore, *settings.Repository) {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "settings.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := settings.NewRepository(db.DB)
	store := New(repo)
	store.getenv = func(key string) string { return env[key] }
	return store, repo
}

func TestHarvestEnabled(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to disabled", func(t *testing.T) {
		store, _ := setupStore(t, nil)
		assert.False(t, store.GetHarvestEnabled(ctx))
		assert.Equal(t, SourceDefault, store.GetHarvestConfigInfo(ctx).EnabledSource)
	})

	t.Run("reads environment", func(t *testing.T) {
		store, _ := setupStore(t, map[string]string{"HARVEST_ENABLED": "1"})
		assert.True(t, store.GetHarvestEnabled(ctx))
		assert.Equal(t, SourceEnvironment, store.GetHarvestConfigInfo(ctx).EnabledSource)
	})

	t.Run("database overrides environment", func(t *testing.T) {
		store, _ := setupStore(t, map[string]string{"HARVEST_ENABLED": "true"})
		require.NoError(t, store.SetHarvestEnabled(ctx, false))

		assert.False(t, store.GetHarvestEnabled(ctx))
		assert.Equal(t, SourceDatabase, store.GetHarvestConfigInfo(ctx).EnabledSource)
	})
}

func TestHarvestSchedule(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t, map[string]string{"HARVEST_SCHEDULE": "0 0 * * *"})

	assert.Equal(t, "0 0 * * *", store.GetHarvestSchedule(ctx))

	require.NoError(t, store.SetHarvestSchedule(ctx, "*/15 * * * *"))
	assert.Equal(t, "*/15 * * * *", store.GetHarvestSchedule(ctx))

	require.NoError(t, store.ClearHarvestSettings(ctx))
	info := store.GetHarvestConfigInfo(ctx)
	assert.Equal(t, "0 0 * * *", info.Schedule)
	assert.Equal(t, SourceEnvironment, info.ScheduleSource)
}

func TestHarvestSchedule_Default(t *testing.T) {
	store, _ := setupStore(t, nil)
	cfg := store.GetHarvestConfig(context.Background())
	assert.Equal(t, DefaultHarvestSchedule, cfg.Schedule)
	assert.False(t, cfg.Enabled)
}

func TestLastHarvestAt(t *testing.T) {
	ctx := context.Background()
	store, repo := setupStore(t, nil)

	ms, err := store.LastHarvestAt(ctx)
	require.NoError(t, err)
	assert.Zero(t, ms)
	assert.Nil(t, store.GetHarvestConfigInfo(ctx).LastHarvestAt)

	require.NoError(t, store.SetLastHarvestAt(ctx, 1700000000123))
	ms, err = store.LastHarvestAt(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000123), ms)

	info := store.GetHarvestConfigInfo(ctx)
	require.NotNil(t, info.LastHarvestAt)
	assert.Equal(t, int64(1700000000123), info.LastHarvestAt.UnixMilli())

	require.NoError(t, store.ClearHarvestSettings(ctx))
	ms, err = store.LastHarvestAt(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000123), ms, "clearing overrides keeps the harvest cursor")

	require.NoError(t, repo.SetSetting(ctx, entities.SettingKeyHistoryImportLastAt, "garbage"))
	_, err = store.LastHarvestAt(ctx)
	assert.Error(t, err)
}

func TestSetHarvestSchedule_RejectsInvalid(t *testing.T) {
	store, _ := setupStore(t, nil)
	assert.Error(t, store.SetHarvestSchedule(context.Background(), "every tuesday"))
	assert.Equal(t, DefaultHarvestSchedule, store.GetHarvestSchedule(context.Background()))
}

func TestScheduleHelpers(t *testing.T) {
	assert.NoError(t, ValidateCronSchedule("*/15 * * * *"))
	assert.Error(t, ValidateCronSchedule("* * *"))
	assert.Equal(t, "Every hour at :00", GetCronDescription("0 * * * *"))
	assert.Equal(t, "Custom schedule: 5 4 * * *", GetCronDescription("5 4 * * *"))

	from := time.Date(2024, 1, 1, 10, 20, 0, 0, time.UTC)
	next, err := GetNextRunTime("0 * * * *", from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC), next)
}
