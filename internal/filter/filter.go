package filter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/mmr-tortoise/burnish/internal/execute"
)

// RunMode governs how a filter is invoked across the resolved file set.
type RunMode string

const (
	// RunModeRoot invokes the filter once for the whole selection.
	RunModeRoot RunMode = "root"

	// RunModeDirs invokes the filter once per directory group.
	RunModeDirs RunMode = "dirs"

	// RunModeFiles invokes the filter once per file. Each invocation
	// still sees the full file list of its originating directory group
	// as sibling context.
	RunModeFiles RunMode = "files"
)

// IsValid checks whether the RunMode is one of the three defined modes.
func (m RunMode) IsValid() bool {
	switch m {
	case RunModeRoot, RunModeDirs, RunModeFiles:
		return true
	default:
		return false
	}
}

// ParseRunMode converts a string to a RunMode. An empty string defaults
// to RunModeFiles, the most common configuration.
func ParseRunMode(s string) (RunMode, error) {
	if s == "" {
		return RunModeFiles, nil
	}
	mode := RunMode(strings.ToLower(s))
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid run mode: %q (valid: root, dirs, files)", s)
	}
	return mode, nil
}

// Capability declares which actions a filter participates in.
type Capability string

const (
	// CapabilityTidy marks a filter that only tidies (reformats in place).
	CapabilityTidy Capability = "tidy"

	// CapabilityLint marks a filter that only lints (reports findings).
	CapabilityLint Capability = "lint"

	// CapabilityBoth marks a filter usable for both actions, typically a
	// formatter with a check flag.
	CapabilityBoth Capability = "both"
)

// IsValid checks whether the Capability is one of the defined values.
func (c Capability) IsValid() bool {
	switch c {
	case CapabilityTidy, CapabilityLint, CapabilityBoth:
		return true
	default:
		return false
	}
}

// ParseCapability converts a string to a Capability.
func ParseCapability(s string) (Capability, error) {
	c := Capability(strings.ToLower(s))
	if !c.IsValid() {
		return "", fmt.Errorf("invalid command type: %q (valid: tidy, lint, both)", s)
	}
	return c, nil
}

// CanTidy reports whether the capability covers the tidy action.
func (c Capability) CanTidy() bool {
	return c == CapabilityTidy || c == CapabilityBoth
}

// CanLint reports whether the capability covers the lint action.
func (c Capability) CanLint() bool {
	return c == CapabilityLint || c == CapabilityBoth
}

// Filter describes one configured external tool. It is loaded from
// configuration at startup and immutable for the run's lifetime.
type Filter struct {
	// Name is the command's key in the config file.
	Name string

	// Root is the directory commands run from; every path handed to the
	// tool is relative to it.
	Root string

	Capability Capability
	RunMode    RunMode

	// Include and Exclude are doublestar globs matched against
	// root-relative paths. An empty Include matches everything.
	Include []string
	Exclude []string

	// Cmd is the command argv: Cmd[0] is the executable, the rest are
	// base arguments prepended to every invocation.
	Cmd []string

	// Env is extra environment for the tool, on top of the inherited
	// process environment.
	Env map[string]string

	// LintFlags and TidyFlags are appended for the respective action,
	// letting one command serve both (e.g. a formatter's --check flag).
	LintFlags []string
	TidyFlags []string

	// PathFlag, when set, is inserted before the target path.
	PathFlag string

	// OmitPath suppresses the target path argument entirely. Useful for
	// root-mode tools that operate on the whole project and reject
	// trailing path arguments.
	OmitPath bool

	// OkExitCodes are the codes meaning "ran successfully".
	OkExitCodes []int

	// LintFailureExitCodes are the codes meaning "ran successfully and
	// found problems". Any code in neither set is an execution error.
	LintFailureExitCodes []int
}

// ConfigKey returns the filter's fully-qualified config key, used to
// namespace its entries in the final error report.
func (f *Filter) ConfigKey() string {
	return "commands." + f.Name
}

// TidyResult is the outcome of a tidy invocation that was applicable.
type TidyResult struct {
	// Changed is true when the tool modified at least one target file.
	Changed bool
}

// LintResult is the outcome of a lint invocation that was applicable.
type LintResult struct {
	// Ok is true iff the tool's exit code was in OkExitCodes. False
	// means a structured lint finding, not a crash.
	Ok bool

	Stdout string
	Stderr string
}

// Tidy runs the filter's command against the given path. A nil result
// means the path was not applicable. Changed is detected by comparing an
// mtime+size snapshot of the matching files before and after the run.
//
// path and siblings are relative to the filter's Root. siblings is the
// full file list of the path's directory group and determines
// applicability for dir- and root-level invocations.
func (f *Filter) Tidy(path string, siblings []string) (*TidyResult, error) {
	targets := f.matchingTargets(path, siblings)
	if len(targets) == 0 {
		return nil, nil
	}

	before, err := f.snapshot(targets)
	if err != nil {
		return nil, fmt.Errorf("inspecting files before tidying: %w", err)
	}

	args := f.commandArgs(f.TidyFlags, path)
	if _, err := execute.Run(f.Cmd[0], args, f.Root, f.Env, f.OkExitCodes); err != nil {
		return nil, err
	}

	after, err := f.snapshot(targets)
	if err != nil {
		return nil, fmt.Errorf("inspecting files after tidying: %w", err)
	}

	return &TidyResult{Changed: !snapshotsEqual(before, after)}, nil
}

// Lint runs the filter's command against the given path. A nil result
// means the path was not applicable. The exit code is classified into
// Ok (OkExitCodes) or a finding (LintFailureExitCodes); any other code
// surfaces as an execution error.
func (f *Filter) Lint(path string, siblings []string) (*LintResult, error) {
	targets := f.matchingTargets(path, siblings)
	if len(targets) == 0 {
		return nil, nil
	}

	accepted := make([]int, 0, len(f.OkExitCodes)+len(f.LintFailureExitCodes))
	accepted = append(accepted, f.OkExitCodes...)
	accepted = append(accepted, f.LintFailureExitCodes...)

	args := f.commandArgs(f.LintFlags, path)
	r, err := execute.Run(f.Cmd[0], args, f.Root, f.Env, accepted)
	if err != nil {
		return nil, err
	}

	ok := false
	for _, code := range f.OkExitCodes {
		if r.ExitCode == code {
			ok = true
			break
		}
	}

	return &LintResult{Ok: ok, Stdout: r.Stdout, Stderr: r.Stderr}, nil
}

// matchingTargets returns the files this invocation actually covers: the
// path itself for a per-file invocation, or the matching members of the
// sibling list for dir- and root-level invocations. An empty result means
// the invocation is not applicable.
func (f *Filter) matchingTargets(path string, siblings []string) []string {
	if f.RunMode == RunModeFiles {
		if f.matches(path) {
			return []string{path}
		}
		return nil
	}

	var targets []string
	for _, s := range siblings {
		if f.matches(s) {
			targets = append(targets, s)
		}
	}
	return targets
}

// matches applies the include and exclude globs to one root-relative
// path.
func (f *Filter) matches(path string) bool {
	slashed := filepath.ToSlash(path)

	if len(f.Include) > 0 {
		included := false
		for _, glob := range f.Include {
			if ok, err := doublestar.Match(glob, slashed); err == nil && ok {
				included = true
				break
			}
		}
		if !included {
			return false
		}
	}

	for _, glob := range f.Exclude {
		if ok, err := doublestar.Match(glob, slashed); err == nil && ok {
			return false
		}
	}
	return true
}

// commandArgs assembles the argv tail: base arguments, action flags, the
// optional path flag, and the target path (unless omitted).
func (f *Filter) commandArgs(actionFlags []string, path string) []string {
	args := make([]string, 0, len(f.Cmd)-1+len(actionFlags)+2)
	args = append(args, f.Cmd[1:]...)
	args = append(args, actionFlags...)
	if f.OmitPath {
		return args
	}
	if f.PathFlag != "" {
		args = append(args, f.PathFlag)
	}
	return append(args, path)
}

// fileStamp is the per-file fingerprint used for change detection.
// Content hashing would also work but metadata comparison matches what
// tidy tools actually touch and avoids reading every file twice.
type fileStamp struct {
	modTime time.Time
	size    int64
}

// snapshot stats the target files relative to Root. A file that does not
// exist (yet, or anymore) records a zero stamp rather than failing, so a
// tool that deletes or creates files still registers as a change.
func (f *Filter) snapshot(targets []string) (map[string]fileStamp, error) {
	stamps := make(map[string]fileStamp, len(targets))
	for _, t := range targets {
		info, err := os.Stat(filepath.Join(f.Root, t))
		if err != nil {
			if os.IsNotExist(err) {
				stamps[t] = fileStamp{}
				continue
			}
			return nil, err
		}
		stamps[t] = fileStamp{modTime: info.ModTime(), size: info.Size()}
	}
	return stamps, nil
}

func snapshotsEqual(a, b map[string]fileStamp) bool {
	if len(a) != len(b) {
		return false
	}
	for path, sa := range a {
		sb, ok := b[path]
		if !ok || sa.size != sb.size || !sa.modTime.Equal(sb.modTime) {
			return false
		}
	}
	return true
}
