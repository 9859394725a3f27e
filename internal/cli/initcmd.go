// Package cli — initcmd.go implements the "burnish init" command, which
// generates a starter burnish.toml (plus supporting files for some
// components) in the current directory.
package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/burnish/internal/model"
	"github.com/mmr-tortoise/burnish/internal/scaffold"
)

// initFlags holds the flag values for the init command.
type initFlags struct {
	components []string // --component: language toolchains to generate config for
	path       string   // --path: where to write the config (default: ./burnish.toml)
}

// NewInitCommand creates the "init" cobra command. It is called from
// NewRootCommand to register as a subcommand.
func NewInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a starter config for the given components",
		Long: `Generate a starter burnish.toml in the current directory, with one
block of commands per requested component. The go component also writes
a golangci-lint config and a go.mod tidiness check script.

An existing file at the target path is never overwritten.

Examples:
  burnish init --component go
  burnish init --component go --component rust`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
			}
			return scaffold.Init(cwd, flags.path, flags.components, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringSliceVar(&flags.components, "component", nil,
		"Component to generate config for, repeatable (valid: "+strings.Join(scaffold.Components(), ", ")+")")
	cmd.Flags().StringVar(&flags.path, "path", "",
		"File to write the config to (default: burnish.toml)")

	return cmd
}
