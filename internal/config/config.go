package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"

	"github.com/mmr-tortoise/burnish/internal/filter"
	"github.com/mmr-tortoise/burnish/internal/model"
)

// DefaultFileName is the config file burnish looks for at the project
// root when --config is not given.
const DefaultFileName = "burnish.toml"

// Config is the parsed configuration file.
type Config struct {
	// Exclude is the project-wide list of exclude globs, applied by the
	// path resolver in every selection mode.
	Exclude []string `toml:"exclude" json:"exclude"`

	// Commands maps command names to their definitions. Filters derived
	// from it run in lexical name order, since neither TOML tables nor
	// JSON objects expose a declaration order through Go maps.
	Commands map[string]*Command `toml:"commands" json:"commands"`
}

// Command is one [commands.<name>] table. Include, Exclude, LintFlags,
// and TidyFlags accept either a single string or a list of strings, so
// the common one-pattern case reads naturally in the config file.
type Command struct {
	Type                 string            `toml:"type" json:"type"`
	Include              any               `toml:"include" json:"include"`
	Exclude              any               `toml:"exclude" json:"exclude"`
	Cmd                  []string          `toml:"cmd" json:"cmd"`
	Env                  map[string]string `toml:"env" json:"env"`
	RunMode              string            `toml:"run_mode" json:"run_mode"`
	LintFlags            any               `toml:"lint_flags" json:"lint_flags"`
	TidyFlags            any               `toml:"tidy_flags" json:"tidy_flags"`
	PathFlag             string            `toml:"path_flag" json:"path_flag"`
	OmitPath             bool              `toml:"omit_path" json:"omit_path"`
	OkExitCodes          []int             `toml:"ok_exit_codes" json:"ok_exit_codes"`
	LintFailureExitCodes []int             `toml:"lint_failure_exit_codes" json:"lint_failure_exit_codes"`
}

// Load reads and validates the config file at the given path. The format
// is chosen by extension: .json and .jsonc parse as JSONC, everything
// else as TOML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("could not read config file %s", path), err)
	}

	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		err = json.Unmarshal(jsonc.ToJSON(data), cfg)
	default:
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("could not parse config file %s", path), err)
	}

	if err := cfg.validate(); err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("invalid config file %s", path), err)
	}
	return cfg, nil
}

// TidyFilters returns the filters participating in the tidy action, in
// lexical name order, rooted at root.
func (c *Config) TidyFilters(root string) ([]*filter.Filter, error) {
	return c.filters(root, func(cap filter.Capability) bool { return cap.CanTidy() })
}

// LintFilters returns the filters participating in the lint action, in
// lexical name order, rooted at root.
func (c *Config) LintFilters(root string) ([]*filter.Filter, error) {
	return c.filters(root, func(cap filter.Capability) bool { return cap.CanLint() })
}

func (c *Config) filters(root string, wants func(filter.Capability) bool) ([]*filter.Filter, error) {
	names := make([]string, 0, len(c.Commands))
	for name := range c.Commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var filters []*filter.Filter
	for _, name := range names {
		f, err := c.Commands[name].toFilter(name, root)
		if err != nil {
			return nil, err
		}
		if wants(f.Capability) {
			filters = append(filters, f)
		}
	}
	return filters, nil
}

// toFilter converts a validated Command into an immutable filter.Filter.
func (cmd *Command) toFilter(name, root string) (*filter.Filter, error) {
	capability, err := filter.ParseCapability(cmd.Type)
	if err != nil {
		return nil, fmt.Errorf("commands.%s: %w", name, err)
	}
	runMode, err := filter.ParseRunMode(cmd.RunMode)
	if err != nil {
		return nil, fmt.Errorf("commands.%s: %w", name, err)
	}

	include, err := stringList(cmd.Include)
	if err != nil {
		return nil, fmt.Errorf("commands.%s.include: %w", name, err)
	}
	exclude, err := stringList(cmd.Exclude)
	if err != nil {
		return nil, fmt.Errorf("commands.%s.exclude: %w", name, err)
	}
	lintFlags, err := stringList(cmd.LintFlags)
	if err != nil {
		return nil, fmt.Errorf("commands.%s.lint_flags: %w", name, err)
	}
	tidyFlags, err := stringList(cmd.TidyFlags)
	if err != nil {
		return nil, fmt.Errorf("commands.%s.tidy_flags: %w", name, err)
	}

	return &filter.Filter{
		Name:                 name,
		Root:                 root,
		Capability:           capability,
		RunMode:              runMode,
		Include:              include,
		Exclude:              exclude,
		Cmd:                  cmd.Cmd,
		Env:                  cmd.Env,
		LintFlags:            lintFlags,
		TidyFlags:            tidyFlags,
		PathFlag:             cmd.PathFlag,
		OmitPath:             cmd.OmitPath,
		OkExitCodes:          cmd.OkExitCodes,
		LintFailureExitCodes: cmd.LintFailureExitCodes,
	}, nil
}

// validate checks every command definition and the project exclude globs.
func (c *Config) validate() error {
	for _, glob := range c.Exclude {
		if !doublestar.ValidatePattern(glob) {
			return fmt.Errorf("exclude: invalid glob pattern %q", glob)
		}
	}

	for name, cmd := range c.Commands {
		if cmd == nil {
			return fmt.Errorf("commands.%s: empty command definition", name)
		}
		if len(cmd.Cmd) == 0 {
			return fmt.Errorf("commands.%s: cmd must not be empty", name)
		}
		if len(cmd.OkExitCodes) == 0 {
			return fmt.Errorf("commands.%s: ok_exit_codes must not be empty", name)
		}

		capability, err := filter.ParseCapability(cmd.Type)
		if err != nil {
			return fmt.Errorf("commands.%s: %w", name, err)
		}
		if _, err := filter.ParseRunMode(cmd.RunMode); err != nil {
			return fmt.Errorf("commands.%s: %w", name, err)
		}
		if capability.CanLint() && len(cmd.LintFailureExitCodes) == 0 {
			return fmt.Errorf("commands.%s: lint-capable commands need lint_failure_exit_codes", name)
		}

		for _, field := range []struct {
			key string
			val any
		}{
			{"include", cmd.Include},
			{"exclude", cmd.Exclude},
			{"lint_flags", cmd.LintFlags},
			{"tidy_flags", cmd.TidyFlags},
		} {
			list, err := stringList(field.val)
			if err != nil {
				return fmt.Errorf("commands.%s.%s: %w", name, field.key, err)
			}
			if field.key == "include" || field.key == "exclude" {
				for _, glob := range list {
					if !doublestar.ValidatePattern(glob) {
						return fmt.Errorf("commands.%s.%s: invalid glob pattern %q", name, field.key, glob)
					}
				}
			}
		}
	}
	return nil
}

// stringList normalizes a config value that may be a single string or a
// list of strings. nil yields an empty list.
func stringList(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{val}, nil
	case []string:
		return val, nil
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected a string, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a string or list of strings, got %T", v)
	}
}
