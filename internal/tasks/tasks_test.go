package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/pagekeeper/internal/database/documents"
	"github.com/mrlokans/pagekeeper/internal/importers"
)

type stubHarvester struct {
	calls int
	err   error
}

func (h *stubHarvester) Harvest(context.Context) (importers.Result, error) {
	h.calls++
	return importers.Result{Items: 4, Written: documents.WriteResult{Pages: 3, Imports: 3}}, h.err
}

type stubCleaner struct {
	retention  time.Duration
	keepFailed bool
	err        error
}

func (c *stubCleaner) PruneEvents(retention time.Duration, keepFailed bool) (int64, error) {
	c.retention = retention
	c.keepFailed = keepFailed
	return 7, c.err
}

func TestHarvestHistoryTaskConfig(t *testing.T) {
	cfg := HarvestHistoryTask{}.Config()

	assert.Equal(t, "harvest_history", cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 10*time.Minute, cfg.Timeout)
	assert.NotNil(t, cfg.Retention)
}

func TestHarvestHistoryProcessor(t *testing.T) {
	h := &stubHarvester{}
	process := HarvestHistoryProcessor(h, nil)

	require.NoError(t, process(context.Background(), HarvestHistoryTask{Trigger: "manual"}))
	assert.Equal(t, 1, h.calls)

	h.err = errors.New("history locked")
	err := process(context.Background(), HarvestHistoryTask{})
	assert.ErrorContains(t, err, "history locked")

	assert.Error(t, HarvestHistoryProcessor(nil, nil)(context.Background(), HarvestHistoryTask{}))
}

func TestCleanupAuditEventsProcessor(t *testing.T) {
	c := &stubCleaner{}
	process := CleanupAuditEventsProcessor(c, nil)

	require.NoError(t, process(context.Background(), CleanupAuditEventsTask{}))
	assert.Equal(t, 30*24*time.Hour, c.retention, "zero retention falls back to the default")

	assert.False(t, c.keepFailed)

	require.NoError(t, process(context.Background(), CleanupAuditEventsTask{RetentionDays: 7, KeepFailed: true}))
	assert.Equal(t, 7*24*time.Hour, c.retention)
	assert.True(t, c.keepFailed)

	c.err = errors.New("locked")
	assert.Error(t, process(context.Background(), CleanupAuditEventsTask{RetentionDays: 7}))

	assert.Error(t, CleanupAuditEventsProcessor(nil, nil)(context.Background(), CleanupAuditEventsTask{}))
}
