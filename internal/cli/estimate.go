package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mrlokans/pagekeeper/internal/config"
	"github.com/mrlokans/pagekeeper/internal/entrypoint"
)

// EstimateCommand prints how much of the history import is done.
type EstimateCommand struct {
	HistoryPath  string
	DatabasePath string
	Start        int64
	End          int64

	Out io.Writer
}

func NewEstimateCommand() *EstimateCommand {
	return &EstimateCommand{}
}

func (cmd *EstimateCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("estimate", flag.ContinueOnError)

	fs.StringVar(&cmd.HistoryPath, "history", "", "Path to the Chromium 'History' file (default: HISTORY_DB_PATH)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.Int64Var(&cmd.Start, "start", 0, "Window start, ms since the Unix epoch")
	fs.Int64Var(&cmd.End, "end", 0, "Window end, ms since the Unix epoch (default: now)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s estimate [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print how many pages are saved and how many are left to import.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Start < 0 || cmd.End < 0 {
		return fmt.Errorf("-start and -end must not be negative")
	}
	if cmd.End != 0 && cmd.End < cmd.Start {
		return fmt.Errorf("-end must not be before -start")
	}
	return nil
}

func (cmd *EstimateCommand) Run() error {
	out := outOrStdout(cmd.Out)

	cfg, err := commandConfig(cmd.HistoryPath, cmd.DatabasePath)
	if err != nil {
		return err
	}

	log := commandLogger(false)
	defer log.Close()

	app, err := entrypoint.NewApp(cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	end := cmd.End
	if end == 0 {
		end = time.Now().UnixMilli()
	}

	ctx := context.Background()
	est, err := app.Estimator.Estimate(ctx, cmd.Start, end)
	if err != nil {
		return fmt.Errorf("failed to estimate: %w", err)
	}

	fmt.Fprintf(out, "Completed: %d\n", est.Completed)
	fmt.Fprintf(out, "Remaining: %d\n", est.Remaining)

	oldest, found, err := app.Documents.OldestVisitTimestamp(ctx)
	if err != nil {
		return err
	}
	if found {
		fmt.Fprintf(out, "Oldest imported visit: %s\n", formatMillis(oldest))
	}
	return nil
}
