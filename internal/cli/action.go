// Package cli — action.go holds the shared machinery behind the tidy
// and lint subcommands: selection-flag parsing, project root detection,
// and the wiring of config, resolver, printer, and engine for one run.
package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/burnish/internal/config"
	"github.com/mmr-tortoise/burnish/internal/engine"
	"github.com/mmr-tortoise/burnish/internal/model"
	"github.com/mmr-tortoise/burnish/internal/paths"
	"github.com/mmr-tortoise/burnish/internal/ui"
	"github.com/mmr-tortoise/burnish/internal/vcs"
)

// selectionFlags holds the mutually exclusive file-selection flags
// shared by tidy and lint.
type selectionFlags struct {
	all            bool // --all: every file under the project root
	gitModified    bool // --git: files with uncommitted modifications
	gitStaged      bool // --staged: files in the staged diff
	gitStagedStash bool // --staged-with-stash: staged diff inside a stash transaction
}

// registerSelectionFlags binds the selection flags onto a tidy or lint
// command.
func registerSelectionFlags(cmd *cobra.Command, flags *selectionFlags) {
	cmd.Flags().BoolVarP(&flags.all, "all", "a", false, "Run against all files in the project")
	cmd.Flags().BoolVarP(&flags.gitModified, "git", "g", false, "Run against files that git considers modified")
	cmd.Flags().BoolVarP(&flags.gitStaged, "staged", "s", false, "Run against files that are staged for a git commit")
	cmd.Flags().BoolVar(&flags.gitStagedStash, "staged-with-stash", false, "Like --staged, but stash unstaged content first and restore it after")
}

// selectMode translates the selection flags and positional paths into
// exactly one Mode. Flags are mutually exclusive with each other and
// with positional paths; giving none of either is an error too, so the
// user always states which files they mean.
func selectMode(flags *selectionFlags, args []string) (model.Mode, error) {
	var modes []model.Mode
	if flags.all {
		modes = append(modes, model.ModeAll)
	}
	if flags.gitModified {
		modes = append(modes, model.ModeGitModified)
	}
	if flags.gitStaged {
		modes = append(modes, model.ModeGitStaged)
	}
	if flags.gitStagedStash {
		modes = append(modes, model.ModeGitStagedWithStash)
	}

	if len(modes) > 1 {
		return "", model.NewCLIError(model.ExitGeneralError,
			"you can only use one of --all, --git, --staged, or --staged-with-stash")
	}
	if len(modes) == 1 {
		if len(args) > 0 {
			return "", model.NewCLIError(model.ExitGeneralError,
				"you cannot pass paths on the command line along with --all, --git, --staged, or --staged-with-stash")
		}
		return modes[0], nil
	}
	if len(args) == 0 {
		return "", model.NewCLIError(model.ExitGeneralError,
			"you must pass at least one path or one of --all, --git, --staged, or --staged-with-stash")
	}
	return model.ModeFromCli, nil
}

// projectRoot determines the project root for one invocation. A
// directory that carries its own burnish.toml is a root in its own
// right even when nested inside a larger checkout; otherwise the
// nearest VCS checkout root above cwd wins.
func projectRoot(cwd string) (string, error) {
	if _, err := os.Stat(filepath.Join(cwd, config.DefaultFileName)); err == nil {
		return cwd, nil
	}
	return vcs.CheckoutRoot(cwd)
}

// runAction wires everything together and executes one tidy or lint
// run: detect the root, load the config, build the resolver for the
// selected mode, and hand off to the engine.
//
// An Exit with a non-zero status means per-path failures that the
// printer has already reported; it maps to errAlreadyReported so that
// Execute exits 1 without printing anything further.
func runAction(action string, flags *selectionFlags, args []string) error {
	mode, err := selectMode(flags, args)
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
	}

	root, err := projectRoot(cwd)
	if err != nil {
		return err
	}
	VerboseLog("Project root: %s", root)

	cfgPath := configPath
	if cfgPath == "" {
		cfgPath = filepath.Join(root, config.DefaultFileName)
	} else if !filepath.IsAbs(cfgPath) {
		cfgPath = filepath.Join(cwd, cfgPath)
	}
	VerboseLog("Config file: %s", cfgPath)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	// Explicit paths are given relative to where the user stands, not
	// the project root.
	explicit := make([]string, 0, len(args))
	for _, p := range args {
		if !filepath.IsAbs(p) {
			p = filepath.Join(cwd, p)
		}
		explicit = append(explicit, p)
	}

	// The checkout may sit above the project root when the root was
	// chosen by its config file; git-based modes and ignore filtering
	// must still work there, so the adapter is rooted at the checkout
	// independently. The resolver drops anything outside the project
	// root when it relativizes.
	var adapter paths.VCS
	if checkout, err := vcs.CheckoutRoot(root); err == nil {
		adapter = vcs.NewGit(checkout)
	}
	VerboseLog("Selection mode: %s", mode)

	resolver := paths.NewResolver(mode, explicit, root, cfg.Exclude, adapter)
	printer := ui.NewPrinter(os.Stdout, ascii, quiet)
	eng := engine.New(cfg, root, resolver, jobs, printer)

	var exit model.Exit
	switch action {
	case "tidy":
		exit, err = eng.Tidy()
	default:
		exit, err = eng.Lint()
	}
	if err != nil {
		return err
	}

	if exit.Message != "" {
		printer.Message(exit.Message)
	}
	if exit.Status != 0 {
		if !strings.HasSuffix(exit.Error, "\n") {
			exit.Error += "\n"
		}
		printer.Print(exit.Error)
		return errAlreadyReported
	}
	return nil
}
