package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mrlokans/pagekeeper/internal/config"
	"github.com/mrlokans/pagekeeper/internal/logger"
)

// commandConfig loads the environment configuration and applies the flags
// shared by the commands on top of it.
func commandConfig(historyPath, dbPath string) (*config.Config, error) {
	cfg := config.NewConfig()
	if historyPath != "" {
		cfg.History.DBPath = historyPath
	}
	if dbPath != "" {
		abs, err := filepath.Abs(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for database: %w", err)
		}
		cfg.Database.Path = abs
	}
	return cfg, nil
}

// commandLogger keeps the terminal for the command's own output: only
// warnings reach stderr unless verbose is set.
func commandLogger(verbose bool) *logger.Logger {
	cfg := logger.DefaultConfig()
	cfg.Level = "warn"
	if verbose {
		cfg.Level = "debug"
	}
	cfg.Output = os.Stderr
	return logger.New(cfg)
}

func outOrStdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
