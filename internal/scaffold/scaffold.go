package scaffold

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/burnish/internal/config"
	"github.com/mmr-tortoise/burnish/internal/model"
)

// extraFile is a supporting file written alongside the config.
type extraFile struct {
	path    string
	mode    os.FileMode
	content func() ([]byte, error)
}

// component bundles everything one --component value produces: the
// config snippet, supporting files, and follow-up notes for the user.
type component struct {
	toml   string
	extras []extraFile
	notes  []string
}

const goComponentTOML = `[commands.gofumpt]
type = "both"
include = "**/*.go"
cmd = ["gofumpt"]
lint_flags = "-l"
tidy_flags = "-w"
ok_exit_codes = [0]
lint_failure_exit_codes = [1]

[commands.golangci-lint]
type = "lint"
include = "**/*.go"
run_mode = "dirs"
cmd = ["golangci-lint", "run", "-c", "golangci-lint.yml"]
ok_exit_codes = [0]
lint_failure_exit_codes = [1]

[commands.check-go-mod]
type = "lint"
include = "**/go.mod"
run_mode = "root"
cmd = ["dev/bin/check-go-mod.sh"]
omit_path = true
ok_exit_codes = [0]
lint_failure_exit_codes = [1]
`

const rustComponentTOML = `[commands.rustfmt]
type = "both"
include = "**/*.rs"
cmd = ["rustfmt", "--edition", "2021"]
lint_flags = "--check"
ok_exit_codes = [0]
lint_failure_exit_codes = [1]

[commands.clippy]
type = "lint"
include = "**/*.rs"
run_mode = "root"
cmd = ["cargo", "clippy", "--locked", "--all-targets", "--", "-D", "clippy::all"]
omit_path = true
ok_exit_codes = [0]
lint_failure_exit_codes = [101]
`

const perlComponentTOML = `[commands.perlimports]
type = "both"
include = ["**/*.pl", "**/*.pm", "**/*.t"]
cmd = ["perlimports"]
lint_flags = ["--lint"]
tidy_flags = ["-i"]
ok_exit_codes = [0]
lint_failure_exit_codes = [1]

[commands.perltidy]
type = "both"
include = ["**/*.pl", "**/*.pm", "**/*.t"]
cmd = ["perltidy", "--profile=.perltidyrc"]
lint_flags = ["--assert-tidy", "--no-standard-output", "--outfile", "/dev/null"]
tidy_flags = ["--backup-and-modify-in-place", "--backup-file-extension=/"]
ok_exit_codes = [0]
lint_failure_exit_codes = [2]

[commands.perlcritic]
type = "lint"
include = ["**/*.pl", "**/*.pm", "**/*.t"]
cmd = ["perlcritic", "--profile=.perlcriticrc"]
ok_exit_codes = [0]
lint_failure_exit_codes = [2]
`

const checkGoModScript = `#!/bin/sh

set -e

# Fails when go.mod or go.sum would change under go mod tidy.
go mod tidy
if ! git diff --exit-code -- go.mod go.sum; then
    echo "go mod tidy changed go.mod or go.sum; commit the result"
    exit 1
fi
`

// golangciLintConfig is the generated golangci-lint.yml, rendered with
// yaml.Marshal so the structure stays valid as it grows.
type golangciLintConfig struct {
	Linters struct {
		Enable []string `yaml:"enable"`
	} `yaml:"linters"`
	LintersSettings struct {
		Govet struct {
			Enable []string `yaml:"enable"`
		} `yaml:"govet"`
	} `yaml:"linters-settings"`
}

func golangciLintYAML() ([]byte, error) {
	var cfg golangciLintConfig
	cfg.Linters.Enable = []string{"gofumpt", "govet"}
	cfg.LintersSettings.Govet.Enable = []string{"check-type-assertions"}
	return yaml.Marshal(&cfg)
}

var components = map[string]component{
	"go": {
		toml: goComponentTOML,
		extras: []extraFile{
			{path: "golangci-lint.yml", mode: 0644, content: golangciLintYAML},
			{
				path: filepath.Join("dev", "bin", "check-go-mod.sh"),
				mode: 0755,
				content: func() ([]byte, error) {
					return []byte(checkGoModScript), nil
				},
			},
		},
		notes: []string{
			"The generated config runs golangci-lint; see https://golangci-lint.run for installation.",
			"dev/bin/check-go-mod.sh keeps go.mod and go.sum tidy; commit it with your config.",
		},
	},
	"rust": {
		toml: rustComponentTOML,
		notes: []string{
			"The clippy command lints the whole workspace at once; adjust its flags to taste.",
		},
	},
	"perl": {
		toml: perlComponentTOML,
		notes: []string{
			"perlimports comes from App-perlimports on CPAN.",
		},
	},
}

// Components returns the supported component names, sorted.
func Components() []string {
	names := make([]string, 0, len(components))
	for name := range components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Init writes a starter config for the requested components into dir.
// fileName defaults to burnish.toml when empty. Follow-up notes are
// written to out.
//
// Init refuses to overwrite: an existing file at the target path is a
// fatal error, reported without touching anything.
func Init(dir, fileName string, requested []string, out io.Writer) error {
	if fileName == "" {
		fileName = config.DefaultFileName
	}
	if len(requested) == 0 {
		return model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("at least one --component is required (valid: %s)",
				strings.Join(Components(), ", ")))
	}

	picked := make([]component, 0, len(requested))
	for _, name := range requested {
		c, ok := components[name]
		if !ok {
			return model.NewCLIError(model.ExitGeneralError,
				fmt.Sprintf("unknown component %q (valid: %s)", name, strings.Join(Components(), ", ")))
		}
		picked = append(picked, c)
	}

	target := filepath.Join(dir, fileName)
	if _, err := os.Stat(target); err == nil {
		return model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("A file already exists at the given path: %s", fileName))
	}

	var b strings.Builder
	b.WriteString("# Generated by burnish init. Adjust to taste.\n\n")
	for i, c := range picked {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(c.toml)
	}

	if err := os.WriteFile(target, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	fmt.Fprintf(out, "Wrote %s\n", fileName)

	for _, c := range picked {
		for _, extra := range c.extras {
			data, err := extra.content()
			if err != nil {
				return fmt.Errorf("generating %s: %w", extra.path, err)
			}
			path := filepath.Join(dir, extra.path)
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return fmt.Errorf("creating directory for %s: %w", extra.path, err)
			}
			if err := os.WriteFile(path, data, extra.mode); err != nil {
				return fmt.Errorf("writing %s: %w", extra.path, err)
			}
			fmt.Fprintf(out, "Wrote %s\n", extra.path)
		}
	}

	for _, c := range picked {
		for _, note := range c.notes {
			fmt.Fprintf(out, "\n%s\n", note)
		}
	}
	return nil
}
