// Package cli — lint.go implements the "burnish lint" command, which
// runs every lint-capable command from the config against the selected
// file set and reports findings without modifying anything.
package cli

import (
	"github.com/spf13/cobra"
)

// NewLintCommand creates the "lint" cobra command. It is called from
// NewRootCommand to register as a subcommand.
func NewLintCommand() *cobra.Command {
	flags := &selectionFlags{}

	cmd := &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Lint the specified files and/or directories",
		Long: `Run every lint-capable command from the config against the selected
files. Files are never modified; any finding makes the run exit 1.

The file set is chosen by positional paths or by exactly one selection
flag:

Examples:
  burnish lint --all
  burnish lint --git
  burnish lint --staged-with-stash
  burnish lint src/parser.go docs/`,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("lint", flags, args)
		},
	}

	registerSelectionFlags(cmd, flags)
	return cmd
}
