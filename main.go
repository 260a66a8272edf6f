package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/pagekeeper/internal/cli"
	"github.com/mrlokans/pagekeeper/internal/config"
	"github.com/mrlokans/pagekeeper/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

// command is implemented by every CLI subcommand.
type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	name := os.Args[1]
	args := os.Args[2:]

	var cmd command
	switch name {
	case "history-import":
		cmd = cli.NewHistoryImportCommand()
	case "estimate":
		cmd = cli.NewEstimateCommand()
	case "reset-failed":
		cmd = cli.NewResetFailedCommand()
	case "version":
		fmt.Printf("pagekeeper %s (%s)\n", Version, Commit)
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve           Run the HTTP server (default)\n")
	fmt.Fprintf(os.Stderr, "  history-import  Import new browsing history and fetch pending pages\n")
	fmt.Fprintf(os.Stderr, "  estimate        Print completed and remaining page counts\n")
	fmt.Fprintf(os.Stderr, "  reset-failed    Re-queue failed history imports\n")
	fmt.Fprintf(os.Stderr, "  version         Print version information\n")
	fmt.Fprintf(os.Stderr, "\nRun '%s <command> -h' for command options.\n", os.Args[0])
}
