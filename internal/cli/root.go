// Package cli implements the cobra-based CLI commands for burnish.
//
// Each subcommand (tidy, lint, init) is defined in its own file within
// this package. This file defines the root command that serves as the
// parent for all subcommands and handles global flags.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/burnish/internal/model"
)

// Global flag variables shared across all subcommands. These are bound
// to cobra persistent flags on the root command, which makes them
// available to every subcommand automatically.
var (
	// configPath overrides the default config file location
	// (<project root>/burnish.toml).
	configPath string

	// jobs bounds the parallel worker pool. Zero means one worker per
	// available processor.
	jobs int

	// ascii replaces the unicode status symbols with plain characters
	// and disables color.
	ascii bool

	// quiet suppresses per-path success lines. Failures, execution
	// errors, and the final report always print.
	quiet bool

	// verbose enables detailed logging output for debugging.
	verbose bool
)

// Version, Commit, and Date are set at build time via ldflags. They are
// injected from the main package to display version information.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// errAlreadyReported signals that a command failed but has already
// written its own report to the terminal. Execute exits non-zero
// without printing anything further.
var errAlreadyReported = errors.New("failure already reported")

// NewRootCommand creates and configures the root cobra command.
// This is the entry point for the entire CLI application.
//
// The root command itself does not perform any action, it only provides
// help text and global flags. Actual functionality is provided by the
// tidy, lint, and init subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "burnish",
		Short: "One command to rule all your code quality tools",
		Long: `burnish runs all of a project's tidiers (code formatters) and linters
through a single interface, against a file set chosen per invocation:
explicit paths, the whole project, or files git considers modified or
staged.

Commands are defined in a burnish.toml at the project root; run
"burnish init" to generate a starter config.`,

		// Errors are formatted by Execute, not by cobra.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the config file (default: <project root>/burnish.toml)")
	rootCmd.PersistentFlags().IntVarP(&jobs, "jobs", "j", 0, "Number of parallel workers (default: one per CPU)")
	rootCmd.PersistentFlags().BoolVar(&ascii, "ascii", false, "Replace unicode status symbols with ASCII")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress per-path success output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewTidyCommand())
	rootCmd.AddCommand(NewLintCommand())
	rootCmd.AddCommand(NewInitCommand())

	return rootCmd
}

// Execute runs the root command and handles exit codes. This is the
// main entry point called from main.go.
//
// It inspects errors returned by cobra commands and translates them
// into OS exit codes. CLIError types carry their own exit codes; other
// errors default to exit code 1. errAlreadyReported exits 1 silently,
// because the failing command has already printed its report.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errAlreadyReported) {
			os.Exit(int(model.ExitGeneralError))
		}

		var cliErr *model.CLIError
		if errors.As(err, &cliErr) {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		printError(err.Error(), nil)
		os.Exit(int(model.ExitGeneralError))
	}
}

// printError outputs an error message to stderr as "Error: <message>".
func printError(message string, underlying error) {
	if underlying != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", message)
	}
}

// VerboseLog prints a message to stderr only when verbose mode is
// enabled.
func VerboseLog(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}
