package tasks

import "time"

// Config sizes the background queue that runs history harvests and audit
// cleanup. Per-task retries, backoff and timeouts live on each task type.
type Config struct {
	Workers int

	// ReleaseAfter puts a claimed task back on the queue when its worker
	// has not finished it in time.
	ReleaseAfter time.Duration

	// CleanupInterval is how often finished tasks past their retention are purged.
	CleanupInterval time.Duration
}

// DefaultConfig returns the queue settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Workers:         2,
		ReleaseAfter:    15 * time.Minute,
		CleanupInterval: time.Hour,
	}
}

// normalize fills unset fields from DefaultConfig. ReleaseAfter is raised
// above the harvest timeout so a slow harvest is never handed to a second
// worker while the first one is still writing.
func (c Config) normalize() Config {
	def := DefaultConfig()
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	if c.ReleaseAfter <= 0 {
		c.ReleaseAfter = def.ReleaseAfter
	}
	floor := (HarvestHistoryTask{}).Config().Timeout + time.Minute
	if c.ReleaseAfter < floor {
		c.ReleaseAfter = floor
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = def.CleanupInterval
	}
	return c
}
