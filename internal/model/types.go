package model

import (
	"fmt"
	"strings"
)

// Mode represents one of the five file-selection strategies. It is chosen
// once per invocation from CLI flags and never changes afterwards.
type Mode string

const (
	// ModeFromCli selects the paths given as positional CLI arguments.
	// Files are taken as-is; directories are walked recursively.
	ModeFromCli Mode = "cli-paths"

	// ModeAll selects every file under the project root, recursively.
	ModeAll Mode = "all"

	// ModeGitModified selects files with uncommitted working-tree
	// modifications relative to HEAD.
	ModeGitModified Mode = "git-modified"

	// ModeGitStaged selects files in the staged diff against HEAD.
	ModeGitStaged Mode = "git-staged"

	// ModeGitStagedWithStash is ModeGitStaged wrapped in a stash
	// transaction: unstaged changes are stashed (keeping the index)
	// before the staged diff is computed, and the stash is popped
	// afterwards on every exit path.
	ModeGitStagedWithStash Mode = "git-staged-with-stash"
)

// String returns the raw string representation of the Mode.
func (m Mode) String() string {
	return string(m)
}

// IsValid checks whether the Mode is one of the predefined strategies.
func (m Mode) IsValid() bool {
	switch m {
	case ModeFromCli, ModeAll, ModeGitModified, ModeGitStaged, ModeGitStagedWithStash:
		return true
	default:
		return false
	}
}

// Description returns the human-readable phrase used in the per-action
// banner, e.g. "Tidying all files in the project".
func (m Mode) Description() string {
	switch m {
	case ModeFromCli:
		return "paths passed on the command line (recursively)"
	case ModeAll:
		return "all files in the project"
	case ModeGitModified:
		return "modified files according to git"
	case ModeGitStaged:
		return "files staged for a git commit"
	case ModeGitStagedWithStash:
		return "files staged for a git commit, stashing unstaged content"
	default:
		return string(m)
	}
}

// ParseMode converts a string to a Mode. Returns an error if the string
// does not match any valid mode.
func ParseMode(s string) (Mode, error) {
	mode := Mode(strings.ToLower(s))
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid path-selection mode: %q (valid: cli-paths, all, git-modified, git-staged, git-staged-with-stash)", s)
	}
	return mode, nil
}

// PathGroup is a directory plus the candidate files within it produced by
// one resolution. Files are relative to the resolution base, unique within
// the group, and lexically sorted. A PathGroup is never mutated after the
// resolver returns it.
type PathGroup struct {
	// Dir is the immediate containing directory, relative to the
	// resolution base. "." for files at the base itself.
	Dir string

	// Files are the candidate file paths in this directory, relative to
	// the resolution base (so they include the Dir prefix).
	Files []string
}

// ActionError records one path/filter failure surfaced while a filter ran.
// Errors are collected across all filters of one action and rendered
// together in the final report.
type ActionError struct {
	// Path is the file or directory the filter was invoked on.
	Path string

	// Filter identifies the failing filter by its config key,
	// e.g. "commands.rustfmt".
	Filter string

	// Message is the human-readable failure description.
	Message string
}

// Exit is the terminal artifact of one invocation.
type Exit struct {
	// Status is the process exit code: 0 on success or "nothing to do",
	// 1 when any per-path error or lint failure was recorded.
	Status int

	// Message is an optional informational line, e.g. "No files found".
	Message string

	// Error is the consolidated error report, already rendered.
	// Empty when Status is 0.
	Error string
}

// ExitCode defines the process exit codes burnish can terminate with.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully, including
	// the "no candidate files" case.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates a fatal configuration or environment
	// error, or at least one per-path error or lint failure.
	ExitGeneralError ExitCode = 1
)

// CLIError is a custom error type that carries an exit code. It lets the
// CLI layer translate domain errors into process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
