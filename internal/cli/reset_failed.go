package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/pagekeeper/internal/audit"
	"github.com/mrlokans/pagekeeper/internal/config"
	"github.com/mrlokans/pagekeeper/internal/database"
	auditrepo "github.com/mrlokans/pagekeeper/internal/database/audit"
	importsrepo "github.com/mrlokans/pagekeeper/internal/database/imports"
	"github.com/mrlokans/pagekeeper/internal/entities"
)

// ResetFailedCommand re-queues failed history records. It only touches the
// local database, so no history file is needed.
type ResetFailedCommand struct {
	DatabasePath string

	Out io.Writer
}

func NewResetFailedCommand() *ResetFailedCommand {
	return &ResetFailedCommand{}
}

func (cmd *ResetFailedCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("reset-failed", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s reset-failed [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Mark failed history imports as pending so the next import retries them.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *ResetFailedCommand) Run() error {
	out := outOrStdout(cmd.Out)

	cfg, err := commandConfig("", cmd.DatabasePath)
	if err != nil {
		return err
	}

	log := commandLogger(false)
	defer log.Close()

	db, err := database.NewDatabase(cfg.Database.Path, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	auditor := audit.NewService(auditrepo.NewRepository(db.DB), log)
	defer auditor.Wait()

	n, err := importsrepo.NewRepository(db.DB).ResetFailed(context.Background(), entities.ImportTypeHistory)
	auditor.LogReset(entities.ImportTypeHistory, n, err)
	if err != nil {
		return fmt.Errorf("failed to reset failed imports: %w", err)
	}

	fmt.Fprintf(out, "Re-queued %d failed history imports.\n", n)
	return nil
}
