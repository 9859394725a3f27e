// Package cli — tidy.go implements the "burnish tidy" command, which
// runs every tidy-capable command from the config against the selected
// file set and rewrites files in place.
package cli

import (
	"github.com/spf13/cobra"
)

// NewTidyCommand creates the "tidy" cobra command. It is called from
// NewRootCommand to register as a subcommand.
func NewTidyCommand() *cobra.Command {
	flags := &selectionFlags{}

	cmd := &cobra.Command{
		Use:   "tidy [paths...]",
		Short: "Tidy the specified files and/or directories",
		Long: `Run every tidy-capable command from the config against the selected
files, rewriting them in place.

The file set is chosen by positional paths or by exactly one selection
flag:

Examples:
  burnish tidy --all
  burnish tidy --git
  burnish tidy --staged
  burnish tidy src/parser.go docs/`,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("tidy", flags, args)
		},
	}

	registerSelectionFlags(cmd, flags)
	return cmd
}
