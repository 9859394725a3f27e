package paths

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/mmr-tortoise/burnish/internal/model"
	"github.com/mmr-tortoise/burnish/internal/vcs"
)

// VCS is the adapter the resolver uses for git-based selection modes and
// for ignore-rule filtering during filesystem walks. All paths crossing
// this interface are absolute.
type VCS interface {
	ModifiedFiles() ([]string, error)
	StagedFiles() ([]string, error)
	StashUnstaged() error
	PopStash() error
	IgnoredFiles(paths []string) (map[string]struct{}, error)
}

// StashPopError reports a failure to restore the stash taken by the
// GitStagedWithStash transaction. It is distinct from ordinary resolution
// failures because the working tree has been left in an altered state and
// the user must intervene.
type StashPopError struct {
	// PopErr is the error from the stash pop itself.
	PopErr error

	// DiffErr is the error from the enclosed staged-diff step, if that
	// step had already failed when the pop was attempted.
	DiffErr error
}

// Error describes the pop failure, including the enclosed diff failure
// when both occurred. The pop failure always takes precedence.
func (e *StashPopError) Error() string {
	msg := fmt.Sprintf(
		"failed to restore stashed changes, the working tree may be left altered; run `git stash pop` by hand: %v",
		e.PopErr)
	if e.DiffErr != nil {
		msg = fmt.Sprintf("%s (while handling staged-diff failure: %v)", msg, e.DiffErr)
	}
	return msg
}

// Unwrap returns the pop error for errors.Is/errors.As.
func (e *StashPopError) Unwrap() error {
	return e.PopErr
}

// Resolver computes the candidate file set for one selection mode. It is
// constructed once per invocation and memoizes its result, so the engine
// can consult it once per filter without re-walking the tree or re-running
// git.
type Resolver struct {
	mode     model.Mode
	base     string
	explicit []string
	excludes []string
	vcs      VCS

	resolved bool
	groups   []model.PathGroup
	err      error
}

// NewResolver creates a Resolver.
//
// base is the absolute directory resolution is relative to; every path in
// the resulting groups is relative to it. explicit carries the positional
// CLI paths and is only consulted in ModeFromCli. vcs may be nil when the
// base is not inside a VCS checkout; the git-based modes then fail with a
// fatal environment error and walks skip ignore filtering.
func NewResolver(mode model.Mode, explicit []string, base string, excludes []string, adapter VCS) *Resolver {
	return &Resolver{
		mode:     mode,
		base:     base,
		explicit: explicit,
		excludes: excludes,
		vcs:      adapter,
	}
}

// Mode returns the selection mode this resolver was built with.
func (r *Resolver) Mode() model.Mode {
	return r.mode
}

// Groups returns the resolved path groups, computing them on first call.
// A nil slice with a nil error means no candidate files exist; that is an
// informational outcome, not a failure.
//
// Groups are sorted by directory and files within a group are unique and
// lexically sorted, so repeated resolutions of identical inputs are
// deterministic.
func (r *Resolver) Groups() ([]model.PathGroup, error) {
	if !r.resolved {
		r.groups, r.err = r.resolve()
		r.resolved = true
	}
	return r.groups, r.err
}

func (r *Resolver) resolve() ([]model.PathGroup, error) {
	var (
		files []string
		err   error
	)

	switch r.mode {
	case model.ModeFromCli:
		files, err = r.fromCli()
	case model.ModeAll:
		files, err = r.walkAndFilter(r.base)
	case model.ModeGitModified:
		files, err = r.fromVCS(func(v VCS) ([]string, error) { return v.ModifiedFiles() })
	case model.ModeGitStaged:
		files, err = r.fromVCS(func(v VCS) ([]string, error) { return v.StagedFiles() })
	case model.ModeGitStagedWithStash:
		files, err = r.stagedWithStash()
	default:
		return nil, fmt.Errorf("unknown selection mode %q", r.mode)
	}
	if err != nil {
		return nil, err
	}

	return r.group(files), nil
}

// fromCli resolves the explicit CLI paths: files are included directly
// (still subject to exclude globs), directories are walked with both
// exclude globs and VCS ignore rules applied.
func (r *Resolver) fromCli() ([]string, error) {
	var files []string
	for _, p := range r.explicit {
		abs := p
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(r.base, p)
		}

		info, err := os.Stat(abs)
		if err != nil {
			return nil, model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("could not find path %s", p), err)
		}

		if info.IsDir() {
			walked, err := r.walkAndFilter(abs)
			if err != nil {
				return nil, err
			}
			files = append(files, walked...)
			continue
		}
		files = append(files, abs)
	}
	return files, nil
}

// walkAndFilter recursively collects regular files under dir, pruning VCS
// metadata directories and dropping files matched by the checkout's
// ignore rules.
func (r *Resolver) walkAndFilter(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && isVCSDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}

	if r.vcs == nil || len(files) == 0 {
		return files, nil
	}

	ignored, err := r.vcs.IgnoredFiles(files)
	if err != nil {
		return nil, err
	}

	kept := files[:0]
	for _, f := range files {
		if _, ok := ignored[f]; !ok {
			kept = append(kept, f)
		}
	}
	return kept, nil
}

// fromVCS runs one of the adapter's listing operations, failing with an
// environment error when no checkout is available.
func (r *Resolver) fromVCS(list func(VCS) ([]string, error)) ([]string, error) {
	if r.vcs == nil {
		return nil, r.noCheckoutError()
	}
	return list(r.vcs)
}

// stagedWithStash computes the staged diff inside a stash transaction.
//
// The stash push and pop form an acquire/release pair: once the push has
// created a stash entry, the pop is attempted on every exit path via
// defer, including when the staged-diff step fails. A pop failure
// supersedes any diff failure and is reported as a StashPopError.
func (r *Resolver) stagedWithStash() (files []string, err error) {
	if r.vcs == nil {
		return nil, r.noCheckoutError()
	}

	if serr := r.vcs.StashUnstaged(); serr != nil {
		if errors.Is(serr, vcs.ErrNothingStashed) {
			// Clean working tree: nothing was stashed, so there is
			// nothing to pop. The staged diff alone suffices.
			return r.vcs.StagedFiles()
		}
		return nil, serr
	}

	defer func() {
		if perr := r.vcs.PopStash(); perr != nil {
			files = nil
			err = &StashPopError{PopErr: perr, DiffErr: err}
		}
	}()

	return r.vcs.StagedFiles()
}

func (r *Resolver) noCheckoutError() error {
	return model.NewCLIError(model.ExitGeneralError,
		fmt.Sprintf("selection mode %q requires a VCS checkout, but none was found at or above %s",
			r.mode, r.base))
}

// group relativizes the candidate files against the base, applies the
// exclude globs, deduplicates, and partitions the result by immediate
// containing directory. It returns nil when no files remain.
func (r *Resolver) group(files []string) []model.PathGroup {
	byDir := make(map[string]map[string]struct{})
	for _, abs := range files {
		rel, err := filepath.Rel(r.base, abs)
		if err != nil || strings.HasPrefix(rel, "..") {
			// Outside the resolution base: not a candidate.
			continue
		}
		if r.excluded(rel) {
			continue
		}

		dir := filepath.Dir(rel)
		if byDir[dir] == nil {
			byDir[dir] = make(map[string]struct{})
		}
		byDir[dir][rel] = struct{}{}
	}

	if len(byDir) == 0 {
		return nil
	}

	dirs := make([]string, 0, len(byDir))
	for dir := range byDir {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	groups := make([]model.PathGroup, 0, len(dirs))
	for _, dir := range dirs {
		fileSet := byDir[dir]
		sorted := make([]string, 0, len(fileSet))
		for f := range fileSet {
			sorted = append(sorted, f)
		}
		sort.Strings(sorted)
		groups = append(groups, model.PathGroup{Dir: dir, Files: sorted})
	}
	return groups
}

// excluded reports whether the base-relative path matches any of the
// project's exclude globs. Patterns use doublestar syntax, so "vendor/**"
// excludes everything under vendor.
func (r *Resolver) excluded(rel string) bool {
	slashed := filepath.ToSlash(rel)
	for _, glob := range r.excludes {
		if ok, err := doublestar.Match(glob, slashed); err == nil && ok {
			return true
		}
	}
	return false
}

func isVCSDir(name string) bool {
	return name == ".git" || name == ".hg" || name == ".svn"
}
