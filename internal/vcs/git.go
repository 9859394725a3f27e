package vcs

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mmr-tortoise/burnish/internal/model"
)

// checkoutDirs are the marker directories that identify a VCS checkout
// root. Git is the only VCS burnish integrates with, but the root search
// recognizes the others so that running inside e.g. a Mercurial checkout
// still finds a sensible project root.
var checkoutDirs = []string{".git", ".hg", ".svn"}

// IsCheckout reports whether the given directory is itself a VCS checkout
// root, i.e. contains one of the known VCS marker directories.
func IsCheckout(path string) bool {
	for _, dir := range checkoutDirs {
		if _, err := os.Stat(filepath.Join(path, dir)); err == nil {
			return true
		}
	}
	return false
}

// CheckoutRoot walks up from start (inclusive) and returns the first
// ancestor directory that is a VCS checkout root.
//
// Returns a model.CLIError when no checkout root exists anywhere above
// start. Callers requesting a git-based selection mode treat that as a
// fatal environment error.
func CheckoutRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	for {
		if IsCheckout(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached the filesystem root without finding a checkout.
			break
		}
		dir = parent
	}

	return "", model.NewCLIError(model.ExitGeneralError,
		fmt.Sprintf("could not find a VCS checkout root starting from %s", start))
}

// Git provides git operations for a single checkout by invoking the git
// CLI. All file paths it returns are absolute.
type Git struct {
	// root is the absolute path to the checkout root. Every git command
	// runs with `git -C root`.
	root string
}

// NewGit creates a Git adapter rooted at the given checkout directory.
func NewGit(root string) *Git {
	return &Git{root: root}
}

// Root returns the checkout root this adapter operates on.
func (g *Git) Root() string {
	return g.root
}

// ModifiedFiles returns the files with uncommitted working-tree
// modifications relative to HEAD.
func (g *Git) ModifiedFiles() ([]string, error) {
	out, err := g.run("diff", "--name-only", "HEAD", "--")
	if err != nil {
		return nil, fmt.Errorf("listing modified files: %w", err)
	}
	return g.absolutePaths(out), nil
}

// StagedFiles returns the files in the staged diff against HEAD.
func (g *Git) StagedFiles() ([]string, error) {
	out, err := g.run("diff", "--cached", "--name-only", "--")
	if err != nil {
		return nil, fmt.Errorf("listing staged files: %w", err)
	}
	return g.absolutePaths(out), nil
}

// StashUnstaged stashes all unstaged changes while preserving the index,
// leaving the working tree with only the staged content. It returns an
// error if no stash entry was created, because `git stash push` exits 0
// even when there is nothing to save, and a later PopStash must only run
// when an entry actually exists.
//
// Callers pair every successful StashUnstaged with exactly one PopStash,
// on every exit path.
func (g *Git) StashUnstaged() error {
	before, err := g.stashDepth()
	if err != nil {
		return fmt.Errorf("stashing unstaged changes: %w", err)
	}

	if _, err := g.run("stash", "push", "--keep-index", "--message", "burnish: unstaged changes"); err != nil {
		return fmt.Errorf("stashing unstaged changes: %w", err)
	}

	after, err := g.stashDepth()
	if err != nil {
		return fmt.Errorf("stashing unstaged changes: %w", err)
	}
	if after == before {
		return ErrNothingStashed
	}
	return nil
}

// ErrNothingStashed is returned by StashUnstaged when the working tree had
// no unstaged changes to save. The resolver skips the matching PopStash in
// that case.
var ErrNothingStashed = fmt.Errorf("no unstaged changes to stash")

// PopStash restores the most recent stash entry into the working tree.
func (g *Git) PopStash() error {
	if _, err := g.run("stash", "pop"); err != nil {
		return fmt.Errorf("popping stashed changes: %w", err)
	}
	return nil
}

// IgnoredFiles filters the given absolute paths through git's ignore
// rules (`git check-ignore`) and returns the set of paths that are
// ignored. Paths not under any ignore rule are simply absent from the
// returned set.
func (g *Git) IgnoredFiles(paths []string) (map[string]struct{}, error) {
	ignored := make(map[string]struct{})
	if len(paths) == 0 {
		return ignored, nil
	}

	// check-ignore exits 0 when at least one path is ignored and 1 when
	// none are. Both are successful outcomes for this query.
	input := strings.NewReader(strings.Join(paths, "\x00") + "\x00")
	out, err := g.runWith(input, []int{0, 1}, "check-ignore", "--stdin", "-z")
	if err != nil {
		return nil, fmt.Errorf("checking ignore rules: %w", err)
	}

	for _, p := range strings.Split(out, "\x00") {
		if p != "" {
			ignored[p] = struct{}{}
		}
	}
	return ignored, nil
}

// stashDepth returns the number of entries on the stash stack. It is used
// to detect whether `git stash push` actually created an entry.
func (g *Git) stashDepth() (int, error) {
	out, err := g.run("stash", "list", "--format=%H")
	if err != nil {
		return 0, err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return 0, nil
	}
	return len(strings.Split(out, "\n")), nil
}

// absolutePaths converts newline-separated git output (paths relative to
// the checkout root) into a slice of absolute paths.
func (g *Git) absolutePaths(out string) []string {
	var paths []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		paths = append(paths, filepath.Join(g.root, line))
	}
	return paths
}

// run executes a git command expecting exit code 0 and returns its stdout.
func (g *Git) run(args ...string) (string, error) {
	return g.runWith(nil, []int{0}, args...)
}

// runWith executes a git command with the given stdin and set of accepted
// exit codes, returning stdout.
//
// The checkout root is passed to git via the -C flag, which causes git to
// change to that directory before doing anything else. This avoids
// changing the process's working directory, which would be unsafe with
// concurrent filter execution in flight.
func (g *Git) runWith(stdin io.Reader, acceptedExitCodes []int, args ...string) (string, error) {
	fullArgs := append([]string{"-C", g.root}, args...)

	// #nosec G204 -- args are constructed internally, not from user input
	cmd := exec.Command("git", fullArgs...)
	cmd.Stdin = stdin

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			for _, code := range acceptedExitCodes {
				if exitErr.ExitCode() == code {
					return stdout.String(), nil
				}
			}
		}

		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("git %s failed", strings.Join(args, " "))
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, stderrStr)
		}
		return "", model.WrapCLIError(model.ExitGeneralError, message, err)
	}

	return stdout.String(), nil
}
