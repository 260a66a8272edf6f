// Package settingsstore resolves runtime settings.
// Priority: database > environment > default.
package settingsstore

import (
	"context"
	"os"

	"github.com/mrlokans/pagekeeper/internal/database/settings"
)

const (
	SourceDatabase    = "database"
	SourceEnvironment = "environment"
	SourceDefault     = "default"
)

type SettingsStore struct {
	repo   *settings.Repository
	getenv func(string) string
}

func New(repo *settings.Repository) *SettingsStore {
	return &SettingsStore{repo: repo, getenv: os.Getenv}
}

// resolve returns the effective value for key and where it came from.
// Database read errors fall through to the environment.
func (s *SettingsStore) resolve(ctx context.Context, key, envKey, def string) (string, string) {
	if value, ok, err := s.repo.Get(ctx, key); err == nil && ok && value != "" {
		return value, SourceDatabase
	}
	if envKey != "" {
		if value := s.getenv(envKey); value != "" {
			return value, SourceEnvironment
		}
	}
	return def, SourceDefault
}
