package settingsstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/mrlokans/pagekeeper/internal/entities"
)

const DefaultHarvestSchedule = "0 * * * *"

// HarvestConfig is the effective configuration for background harvesting.
type HarvestConfig struct {
	Enabled  bool   `json:"enabled"`
	Schedule string `json:"schedule"`
}

// HarvestConfigInfo includes the source of each field.
type HarvestConfigInfo struct {
	Enabled        bool   `json:"enabled"`
	EnabledSource  string `json:"enabled_source"`
	Schedule       string `json:"schedule"`
	ScheduleSource string `json:"schedule_source"`

	LastHarvestAt *time.Time `json:"last_harvest_at,omitempty"`
}

func (s *SettingsStore) GetHarvestEnabled(ctx context.Context) bool {
	value, _ := s.resolve(ctx, entities.SettingKeyHarvestEnabled, "HARVEST_ENABLED", "false")
	return parseBool(value)
}

func (s *SettingsStore) SetHarvestEnabled(ctx context.Context, enabled bool) error {
	return s.repo.SetSetting(ctx, entities.SettingKeyHarvestEnabled, strconv.FormatBool(enabled))
}

func (s *SettingsStore) GetHarvestSchedule(ctx context.Context) string {
	value, _ := s.resolve(ctx, entities.SettingKeyHarvestSchedule, "HARVEST_SCHEDULE", DefaultHarvestSchedule)
	return value
}

// SetHarvestSchedule stores schedule after checking it parses.
func (s *SettingsStore) SetHarvestSchedule(ctx context.Context, schedule string) error {
	if err := ValidateCronSchedule(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return s.repo.SetSetting(ctx, entities.SettingKeyHarvestSchedule, schedule)
}

func (s *SettingsStore) GetHarvestConfig(ctx context.Context) HarvestConfig {
	return HarvestConfig{
		Enabled:  s.GetHarvestEnabled(ctx),
		Schedule: s.GetHarvestSchedule(ctx),
	}
}

func (s *SettingsStore) GetHarvestConfigInfo(ctx context.Context) HarvestConfigInfo {
	enabled, enabledSource := s.resolve(ctx, entities.SettingKeyHarvestEnabled, "HARVEST_ENABLED", "false")
	schedule, scheduleSource := s.resolve(ctx, entities.SettingKeyHarvestSchedule, "HARVEST_SCHEDULE", DefaultHarvestSchedule)

	info := HarvestConfigInfo{
		Enabled:        parseBool(enabled),
		EnabledSource:  enabledSource,
		Schedule:       schedule,
		ScheduleSource: scheduleSource,
	}
	if ms, err := s.LastHarvestAt(ctx); err == nil && ms > 0 {
		ts := time.UnixMilli(ms).UTC()
		info.LastHarvestAt = &ts
	}
	return info
}

// ClearHarvestSettings removes database overrides, reverting to env/default.
// The last harvest timestamp is kept.
func (s *SettingsStore) ClearHarvestSettings(ctx context.Context) error {
	for _, key := range []string{entities.SettingKeyHarvestEnabled, entities.SettingKeyHarvestSchedule} {
		if err := s.repo.DeleteSetting(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// LastHarvestAt returns the end of the last successful harvest window in
// milliseconds since epoch, or 0 if history was never harvested.
func (s *SettingsStore) LastHarvestAt(ctx context.Context) (int64, error) {
	value, ok, err := s.repo.Get(ctx, entities.SettingKeyHistoryImportLastAt)
	if err != nil {
		return 0, fmt.Errorf("read last harvest time: %w", err)
	}
	if !ok || value == "" {
		return 0, nil
	}
	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse last harvest time %q: %w", value, err)
	}
	return ms, nil
}

func (s *SettingsStore) SetLastHarvestAt(ctx context.Context, ms int64) error {
	return s.repo.SetSetting(ctx, entities.SettingKeyHistoryImportLastAt, strconv.FormatInt(ms, 10))
}

func parseBool(v string) bool {
	return v == "true" || v == "1"
}
