package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrlokans/pagekeeper/internal/batch"
	"github.com/mrlokans/pagekeeper/internal/config"
	"github.com/mrlokans/pagekeeper/internal/entities"
	"github.com/mrlokans/pagekeeper/internal/entrypoint"
	"github.com/mrlokans/pagekeeper/internal/imports"
)

// HistoryImportCommand harvests new browsing history and fetches every
// pending page in the terminal.
type HistoryImportCommand struct {
	HistoryPath  string
	DatabasePath string
	Concurrency  int
	Verbose      bool
	DryRun       bool

	// Out receives the progress report. Defaults to stdout.
	Out io.Writer
	// Interrupt delivers stop requests. Defaults to SIGINT and SIGTERM.
	Interrupt <-chan os.Signal
}

func NewHistoryImportCommand() *HistoryImportCommand {
	return &HistoryImportCommand{}
}

func (cmd *HistoryImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("history-import", flag.ContinueOnError)

	fs.StringVar(&cmd.HistoryPath, "history", "", "Path to the Chromium 'History' file (default: HISTORY_DB_PATH)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.IntVar(&cmd.Concurrency, "concurrency", 0, "Pages fetched in parallel (default: IMPORT_CONCURRENCY)")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Print every page and enable debug logging")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Show what would be imported without making changes")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s history-import [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import new browsing history and save the visited pages.\n\n")
		fmt.Fprintf(os.Stderr, "Chromium keeps history in its profile directory, e.g.\n")
		fmt.Fprintf(os.Stderr, "  ~/.config/google-chrome/Default/History\n")
		fmt.Fprintf(os.Stderr, "  ~/Library/Application Support/Google/Chrome/Default/History\n\n")
		fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop; pages not yet fetched stay queued for the next run.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s history-import -history ~/.config/google-chrome/Default/History\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s history-import -dry-run -verbose\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Concurrency < 0 {
		return fmt.Errorf("-concurrency must not be negative")
	}
	return nil
}

func (cmd *HistoryImportCommand) Run() error {
	out := outOrStdout(cmd.Out)

	fmt.Fprintln(out, "History Import")
	fmt.Fprintln(out, "==============")
	if cmd.DryRun {
		fmt.Fprintln(out, "DRY RUN MODE - No changes will be made")
	}

	cfg, err := commandConfig(cmd.HistoryPath, cmd.DatabasePath)
	if err != nil {
		return err
	}
	if cmd.Concurrency > 0 {
		cfg.Import.Concurrency = cmd.Concurrency
	}

	log := commandLogger(cmd.Verbose)
	defer log.Close()

	app, err := entrypoint.NewApp(cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	fmt.Fprintf(out, "History:  %s\n", cfg.History.DBPath)
	fmt.Fprintf(out, "Database: %s\n\n", cfg.Database.Path)

	ctx := context.Background()
	if cmd.DryRun {
		return cmd.preview(ctx, out, app)
	}

	fmt.Fprintln(out, "Harvesting new history...")
	s, err := app.Orchestrator.OpenSession(ctx)
	if err != nil {
		return fmt.Errorf("failed to open import session: %w", err)
	}

	counts := s.Init()
	total := s.Summary().Total
	fmt.Fprintf(out, "Import records: %d (succeeded %d, failed %d)\n",
		counts.Totals.History, counts.Success.History, counts.Fail.History)

	if total == 0 {
		fmt.Fprintln(out, "\nNothing to fetch.")
		return s.Close(ctx)
	}
	fmt.Fprintf(out, "Fetching %d pages with concurrency %d...\n\n", total, cfg.Import.Concurrency)

	interrupt := cmd.Interrupt
	if interrupt == nil {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sig)
		interrupt = sig
	}

	eventsCtx, stopEvents := context.WithCancel(ctx)
	defer stopEvents()
	events := s.Events(eventsCtx)
	if err := s.Handle(batch.CmdStart); err != nil {
		s.Close(ctx)
		return err
	}

	stopped := cmd.follow(out, s, events, interrupt, total)

	// Let in-flight pages finish; their results are still reported.
	closeCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Global.ShutdownTimeoutInSeconds)*time.Second+cfg.Fetch.Timeout)
	defer cancel()
	closeErr := s.Close(closeCtx)
	for ev := range events {
		cmd.report(out, ev, s.Summary().Processed, total)
	}

	summary := s.Summary()
	fmt.Fprintln(out, "\n=== Summary ===")
	fmt.Fprintf(out, "Processed: %d of %d\n", summary.Processed, total)
	fmt.Fprintf(out, "Succeeded: %d\n", summary.Succeeded)
	fmt.Fprintf(out, "Failed:    %d\n", summary.Failed)
	if stopped {
		fmt.Fprintf(out, "Stopped. %d pages stay queued for the next run.\n", total-summary.Processed)
	}

	if closeErr != nil && !errors.Is(closeErr, context.Canceled) {
		return fmt.Errorf("failed to drain import session: %w", closeErr)
	}
	return nil
}

// follow prints events until the session completes or is stopped. An
// interrupt sends STOP; a second one is ignored while in-flight pages drain.
func (cmd *HistoryImportCommand) follow(out io.Writer, s *imports.Session, events <-chan imports.Event, interrupt <-chan os.Signal, total int) bool {
	stopping := false
	for {
		select {
		case <-interrupt:
			if stopping {
				continue
			}
			stopping = true
			fmt.Fprintln(out, "\nStopping, waiting for in-flight pages...")
			if err := s.Handle(batch.CmdStop); err != nil && !errors.Is(err, batch.ErrInvalidTransition) {
				fmt.Fprintf(out, "Failed to stop: %v\n", err)
			}

		case ev, ok := <-events:
			if !ok {
				return stopping
			}
			cmd.report(out, ev, s.Summary().Processed, total)
			switch {
			case ev.Type == imports.EventComplete:
				return false
			case ev.Type == imports.EventState && ev.State == batch.StateStopped:
				return true
			}
		}
	}
}

func (cmd *HistoryImportCommand) report(out io.Writer, ev imports.Event, processed, total int) {
	switch ev.Type {
	case imports.EventNext:
		if ev.Error != "" {
			fmt.Fprintf(out, "[%d/%d] FAIL %s: %s\n", processed, total, ev.URL, ev.Error)
		} else if cmd.Verbose {
			fmt.Fprintf(out, "[%d/%d] ok   %s\n", processed, total, ev.URL)
		} else if processed%25 == 0 {
			fmt.Fprintf(out, "[%d/%d]\n", processed, total)
		}
	case imports.EventState:
		if cmd.Verbose {
			fmt.Fprintf(out, "Session %s\n", ev.State)
		}
	case imports.EventComplete:
		fmt.Fprintln(out, "\nAll pages processed.")
	}
}

// preview lists what a harvest would import without writing anything.
func (cmd *HistoryImportCommand) preview(ctx context.Context, out io.Writer, app *entrypoint.App) error {
	start, err := app.Settings.LastHarvestAt(ctx)
	if err != nil {
		return err
	}
	end := time.Now().UnixMilli()

	items, err := app.Source.FetchWorthyItems(ctx, start, end)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	pending, err := app.Queue.ListPending(ctx, entities.ImportTypeHistory)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "New history items since %s: %d\n", formatMillis(start), len(items))
	fmt.Fprintf(out, "Already queued pages: %d\n", len(pending))

	if cmd.Verbose {
		fmt.Fprintln(out, "\n=== Items Found ===")
		for i, item := range items {
			title := item.Title
			if title == "" {
				title = "(no title)"
			}
			fmt.Fprintf(out, "%d. %s\n   %s\n", i+1, title, item.URL)
		}
	}

	fmt.Fprintln(out, "\nDry run complete. Use without -dry-run to import.")
	return nil
}

func formatMillis(ms int64) string {
	if ms <= 0 {
		return "the beginning"
	}
	return time.UnixMilli(ms).Local().Format(time.RFC3339)
}
