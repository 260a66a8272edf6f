package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/pagekeeper/internal/settingsstore"
)

// HarvestSettingsController handles background harvest settings.
type HarvestSettingsController struct {
	store     HarvestSettingsStore
	scheduler HarvestScheduler
	audit     AuditLog
}

func NewHarvestSettingsController(store HarvestSettingsStore, sched HarvestScheduler, audit AuditLog) *HarvestSettingsController {
	return &HarvestSettingsController{store: store, scheduler: sched, audit: audit}
}

type SchedulePreset struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

var schedulePresets = []SchedulePreset{
	{Label: "Every 15 minutes", Value: "*/15 * * * *"},
	{Label: "Every 30 minutes", Value: "*/30 * * * *"},
	{Label: "Every hour", Value: "0 * * * *"},
	{Label: "Every 6 hours", Value: "0 */6 * * *"},
	{Label: "Daily at midnight", Value: "0 0 * * *"},
}

// HarvestSettingsResponse is the response for GET /api/settings/harvest
type HarvestSettingsResponse struct {
	Config       settingsstore.HarvestConfigInfo `json:"config"`
	Description  string                          `json:"description"`
	NextRun      *time.Time                      `json:"next_run,omitempty"`
	IsRunning    bool                            `json:"is_running"`
	IsHarvesting bool                            `json:"is_harvesting"`
	Presets      []SchedulePreset                `json:"presets"`
}

// GetSettings handles GET /api/settings/harvest
func (hc *HarvestSettingsController) GetSettings(c *gin.Context) {
	info := hc.store.GetHarvestConfigInfo(c.Request.Context())

	resp := HarvestSettingsResponse{
		Config:      info,
		Description: settingsstore.GetCronDescription(info.Schedule),
		Presets:     schedulePresets,
	}
	if hc.scheduler != nil {
		resp.NextRun = hc.scheduler.GetNextRunTime()
		resp.IsRunning = hc.scheduler.IsRunning()
		resp.IsHarvesting = hc.scheduler.IsHarvesting()
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateHarvestSettingsRequest is the request body for PUT /api/settings/harvest
type UpdateHarvestSettingsRequest struct {
	Enabled  *bool  `json:"enabled"`
	Schedule string `json:"schedule"`
}

// UpdateSettings handles PUT /api/settings/harvest
func (hc *HarvestSettingsController) UpdateSettings(c *gin.Context) {
	var req UpdateHarvestSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	ctx := c.Request.Context()

	if req.Schedule != "" {
		if err := settingsstore.ValidateCronSchedule(req.Schedule); err != nil {
			respondBadRequest(c, "invalid cron schedule: "+err.Error())
			return
		}
		if err := hc.store.SetHarvestSchedule(ctx, req.Schedule); err != nil {
			respondInternalError(c, err, "save harvest schedule")
			return
		}
	}

	if req.Enabled != nil {
		if err := hc.store.SetHarvestEnabled(ctx, *req.Enabled); err != nil {
			respondInternalError(c, err, "save harvest enabled")
			return
		}
	}

	if !hc.reschedule(c) {
		return
	}
	if hc.audit != nil {
		hc.audit.LogSettings("harvest_settings_update", "Updated history harvest settings")
	}
	hc.GetSettings(c)
}

// ResetSettings handles POST /api/settings/harvest/reset
// Drops database overrides, reverting to environment and defaults.
func (hc *HarvestSettingsController) ResetSettings(c *gin.Context) {
	if err := hc.store.ClearHarvestSettings(c.Request.Context()); err != nil {
		respondInternalError(c, err, "reset harvest settings")
		return
	}
	if !hc.reschedule(c) {
		return
	}
	if hc.audit != nil {
		hc.audit.LogSettings("harvest_settings_reset", "Reset history harvest settings")
	}
	hc.GetSettings(c)
}

// HarvestNow handles POST /api/settings/harvest/run
func (hc *HarvestSettingsController) HarvestNow(c *gin.Context) {
	if hc.scheduler == nil {
		respondError(c, http.StatusServiceUnavailable, "harvest scheduler not available")
		return
	}
	if hc.scheduler.IsHarvesting() {
		respondConflict(c, "HARVEST_RUNNING", "a harvest is already running")
		return
	}
	hc.scheduler.RunNow()
	respondAccepted(c, "harvest started", nil)
}

func (hc *HarvestSettingsController) reschedule(c *gin.Context) bool {
	if hc.scheduler == nil {
		return true
	}
	if err := hc.scheduler.Reschedule(c.Request.Context()); err != nil {
		respondInternalError(c, err, "reschedule harvest")
		return false
	}
	return true
}
