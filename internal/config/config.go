package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		History
		Blacklist
		Import
		Fetch
		Harvest
		Tasks
		Audit
		Log
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	History struct {
		DBPath string // Chromium "History" sqlite file
	}
	Blacklist struct {
		Patterns []string // host.tld or /regexp/
	}
	Import struct {
		Concurrency      int // pages fetched in parallel per session
		VisitConcurrency int // visit lookups in parallel per harvest
	}
	Fetch struct {
		Timeout    time.Duration
		UserAgent  string
		StorageDir string
		MaxBodyMB  int
	}
	Harvest struct {
		Enabled  bool
		Schedule string // Cron format: "0 * * * *" = hourly
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Audit struct {
		RetentionDays int  // Days to keep audit events (default: 30)
		KeepFailed    bool // Failed events survive retention cleanup
	}
	Log struct {
		Level  string
		Format string // text or json
		File   string // optional rotating log file
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("history_db_path", "")
	v.SetDefault("blacklist", "")

	v.SetDefault("import_concurrency", 1)
	v.SetDefault("import_visit_concurrency", 4)

	v.SetDefault("fetch_timeout", "20s")
	v.SetDefault("fetch_user_agent", DefaultUserAgent)
	v.SetDefault("fetch_storage_dir", DefaultFetchStorageDir)
	v.SetDefault("fetch_max_body_mb", 10)

	v.SetDefault("harvest_enabled", false)
	v.SetDefault("harvest_schedule", "0 * * * *") // Hourly at :00

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_keep_failed", true)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("log_file", "")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		History: History{
			DBPath: v.GetString("HISTORY_DB_PATH"),
		},
		Blacklist: Blacklist{
			Patterns: splitList(v.GetString("BLACKLIST")),
		},
		Import: Import{
			Concurrency:      v.GetInt("IMPORT_CONCURRENCY"),
			VisitConcurrency: v.GetInt("IMPORT_VISIT_CONCURRENCY"),
		},
		Fetch: Fetch{
			Timeout:    v.GetDuration("FETCH_TIMEOUT"),
			UserAgent:  v.GetString("FETCH_USER_AGENT"),
			StorageDir: v.GetString("FETCH_STORAGE_DIR"),
			MaxBodyMB:  v.GetInt("FETCH_MAX_BODY_MB"),
		},
		Harvest: Harvest{
			Enabled:  v.GetBool("HARVEST_ENABLED"),
			Schedule: v.GetString("HARVEST_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
			KeepFailed:    v.GetBool("AUDIT_KEEP_FAILED"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
			File:   v.GetString("LOG_FILE"),
		},
	}
}

// splitList parses a comma separated env value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
