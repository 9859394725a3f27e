// Package execute provides the process-execution primitive used by
// filters: run an external command, capture stdout and stderr, and check
// the exit code against a set of accepted codes.
//
// Nothing else in the codebase forks or execs tool processes directly;
// the filter layer describes invocations and this package carries them
// out.
package execute

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Result holds the outcome of one command execution whose exit code was
// in the accepted set.
type Result struct {
	// ExitCode is the observed process exit code.
	ExitCode int

	// Stdout and Stderr are the captured output streams.
	Stdout string
	Stderr string
}

// ExitCodeError reports a command that ran to completion but exited with
// a code outside the accepted set.
type ExitCodeError struct {
	// Cmd is the executable plus arguments, for diagnostics.
	Cmd string

	// ExitCode is the unexpected code the command exited with.
	ExitCode int

	// Stderr is the captured stderr, trimmed.
	Stderr string
}

// Error describes the unexpected exit, including stderr when the command
// produced any.
func (e *ExitCodeError) Error() string {
	msg := fmt.Sprintf("%s exited with unexpected code %d", e.Cmd, e.ExitCode)
	if e.Stderr != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Stderr)
	}
	return msg
}

// Run executes the command in the given working directory with the
// process environment extended by env, capturing both output streams.
//
// If the command exits with a code in acceptedExitCodes, the Result is
// returned. Any other exit code yields an ExitCodeError; a failure to
// launch the process at all yields a plain wrapped error. Run blocks
// until the command finishes; there is no timeout, so a hung tool holds
// its caller.
func Run(executable string, args []string, dir string, env map[string]string, acceptedExitCodes []int) (*Result, error) {
	// #nosec G204 -- the command comes from the user's own config file
	cmd := exec.Command(executable, args...)
	cmd.Dir = dir

	if len(env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	exitCode := 0
	if err := cmd.Run(); err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return nil, fmt.Errorf("failed to run %s: %w", executable, err)
		}
		exitCode = exitErr.ExitCode()
	}

	for _, code := range acceptedExitCodes {
		if exitCode == code {
			return &Result{
				ExitCode: exitCode,
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
			}, nil
		}
	}

	return nil, &ExitCodeError{
		Cmd:      strings.Join(append([]string{executable}, args...), " "),
		ExitCode: exitCode,
		Stderr:   strings.TrimSpace(stderr.String()),
	}
}
