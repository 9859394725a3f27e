package paths

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/burnish/internal/model"
	"github.com/mmr-tortoise/burnish/internal/vcs"
)

// fakeVCS is a scriptable VCS adapter for exercising the resolver without
// a real git checkout, in particular the stash transaction's exit paths.
type fakeVCS struct {
	modified []string
	staged   []string

	stagedErr error
	stashErr  error
	popErr    error

	stagedCalls int
	stashCalls  int
	popCalls    int
}

func (f *fakeVCS) ModifiedFiles() ([]string, error) { return f.modified, nil }

func (f *fakeVCS) StagedFiles() ([]string, error) {
	f.stagedCalls++
	return f.staged, f.stagedErr
}

func (f *fakeVCS) StashUnstaged() error {
	f.stashCalls++
	return f.stashErr
}

func (f *fakeVCS) PopStash() error {
	f.popCalls++
	return f.popErr
}

func (f *fakeVCS) IgnoredFiles(paths []string) (map[string]struct{}, error) {
	return map[string]struct{}{}, nil
}

// writeTree creates the given files (with trivial content) under root.
func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(f+"\n"), 0644))
	}
}

// TestResolveAll verifies the recursive walk: grouping by immediate
// directory, lexical ordering, and exclude-glob pruning.
func TestResolveAll(t *testing.T) {
	base := t.TempDir()
	writeTree(t, base,
		"main.go",
		"README.md",
		"src/b.go",
		"src/a.go",
		"vendor/lib/lib.go",
	)

	r := NewResolver(model.ModeAll, nil, base, []string{"vendor/**"}, nil)
	groups, err := r.Groups()
	require.NoError(t, err)

	expect := []model.PathGroup{
		{Dir: ".", Files: []string{"README.md", "main.go"}},
		{Dir: "src", Files: []string{filepath.Join("src", "a.go"), filepath.Join("src", "b.go")}},
	}
	assert.Equal(t, expect, groups)
}

// TestResolveAllPrunesVCSDirs verifies that VCS metadata directories are
// never walked into.
func TestResolveAllPrunesVCSDirs(t *testing.T) {
	base := t.TempDir()
	writeTree(t, base, "main.go", ".git/config", ".hg/hgrc")

	r := NewResolver(model.ModeAll, nil, base, nil, nil)
	groups, err := r.Groups()
	require.NoError(t, err)

	require.Len(t, groups, 1)
	assert.Equal(t, []string{"main.go"}, groups[0].Files)
}

// TestResolveFromCli verifies explicit-path resolution: a file is included
// directly, a directory is walked, and exclude globs still apply to both.
func TestResolveFromCli(t *testing.T) {
	base := t.TempDir()
	writeTree(t, base,
		"main.go",
		"notes.txt",
		"src/a.go",
		"src/gen.pb.go",
	)

	r := NewResolver(model.ModeFromCli, []string{"main.go", "src"}, base,
		[]string{"**/*.pb.go"}, nil)
	groups, err := r.Groups()
	require.NoError(t, err)

	expect := []model.PathGroup{
		{Dir: ".", Files: []string{"main.go"}},
		{Dir: "src", Files: []string{filepath.Join("src", "a.go")}},
	}
	assert.Equal(t, expect, groups)
}

// TestResolveFromCliMissingPath verifies the fatal error for a path that
// does not exist.
func TestResolveFromCliMissingPath(t *testing.T) {
	base := t.TempDir()

	r := NewResolver(model.ModeFromCli, []string{"nope.go"}, base, nil, nil)
	_, err := r.Groups()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not find path nope.go")
}

// TestResolveNoFiles verifies that an empty candidate set is a nil result,
// not an error.
func TestResolveNoFiles(t *testing.T) {
	base := t.TempDir()

	r := NewResolver(model.ModeAll, nil, base, nil, nil)
	groups, err := r.Groups()
	require.NoError(t, err)
	assert.Nil(t, groups, "no candidate files should resolve to nil, not an error")
}

// TestResolveGitModified verifies that adapter-listed files are
// relativized against the base, that files outside the base are dropped,
// and that exclude globs prune the result.
func TestResolveGitModified(t *testing.T) {
	base := t.TempDir()
	outside := t.TempDir()

	fake := &fakeVCS{modified: []string{
		filepath.Join(base, "src", "a.go"),
		filepath.Join(base, "gen", "schema.pb.go"),
		filepath.Join(outside, "elsewhere.go"),
	}}

	r := NewResolver(model.ModeGitModified, nil, base, []string{"**/*.pb.go"}, fake)
	groups, err := r.Groups()
	require.NoError(t, err)

	expect := []model.PathGroup{
		{Dir: "src", Files: []string{filepath.Join("src", "a.go")}},
	}
	assert.Equal(t, expect, groups)
}

// TestResolveGitModeWithoutCheckout verifies the environment error when a
// git-based mode is requested outside any VCS checkout.
func TestResolveGitModeWithoutCheckout(t *testing.T) {
	r := NewResolver(model.ModeGitStaged, nil, t.TempDir(), nil, nil)
	_, err := r.Groups()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a VCS checkout")
}

// TestResolveMemoized verifies that resolution runs at most once per
// Resolver, so each filter of an action sees the same snapshot.
func TestResolveMemoized(t *testing.T) {
	base := t.TempDir()
	fake := &fakeVCS{staged: []string{filepath.Join(base, "a.go")}}

	r := NewResolver(model.ModeGitStaged, nil, base, nil, fake)

	first, err := r.Groups()
	require.NoError(t, err)
	second, err := r.Groups()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, fake.stagedCalls, "StagedFiles should be consulted exactly once")
}

// TestStashTransactionPopsOnSuccess verifies the acquire/release pairing
// on the happy path.
func TestStashTransactionPopsOnSuccess(t *testing.T) {
	base := t.TempDir()
	fake := &fakeVCS{staged: []string{filepath.Join(base, "a.go")}}

	r := NewResolver(model.ModeGitStagedWithStash, nil, base, nil, fake)
	groups, err := r.Groups()
	require.NoError(t, err)

	require.Len(t, groups, 1)
	assert.Equal(t, 1, fake.stashCalls)
	assert.Equal(t, 1, fake.popCalls, "pop must run exactly once per stash")
}

// TestStashTransactionPopsOnDiffFailure verifies that the pop still runs
// when the enclosed staged-diff step fails, and that the diff failure is
// what gets reported when the pop itself succeeds.
func TestStashTransactionPopsOnDiffFailure(t *testing.T) {
	diffErr := errors.New("diff blew up")
	fake := &fakeVCS{stagedErr: diffErr}

	r := NewResolver(model.ModeGitStagedWithStash, nil, t.TempDir(), nil, fake)
	_, err := r.Groups()

	require.ErrorIs(t, err, diffErr)
	assert.Equal(t, 1, fake.popCalls, "pop must run even when the diff step fails")
}

// TestStashTransactionPopFailure verifies that a pop failure supersedes
// the diff outcome and surfaces as a StashPopError carrying both causes.
func TestStashTransactionPopFailure(t *testing.T) {
	diffErr := errors.New("diff blew up")
	popErr := errors.New("pop blew up")
	fake := &fakeVCS{stagedErr: diffErr, popErr: popErr}

	r := NewResolver(model.ModeGitStagedWithStash, nil, t.TempDir(), nil, fake)
	_, err := r.Groups()
	require.Error(t, err)

	var spe *StashPopError
	require.True(t, errors.As(err, &spe), "a failed pop must surface as StashPopError")
	assert.ErrorIs(t, spe.PopErr, popErr)
	assert.ErrorIs(t, spe.DiffErr, diffErr)
	assert.Contains(t, err.Error(), "working tree may be left altered")
}

// TestStashTransactionNothingToStash verifies that a clean working tree
// skips the pop entirely (no stash entry was created).
func TestStashTransactionNothingToStash(t *testing.T) {
	base := t.TempDir()
	fake := &fakeVCS{
		stashErr: vcs.ErrNothingStashed,
		staged:   []string{filepath.Join(base, "a.go")},
	}

	r := NewResolver(model.ModeGitStagedWithStash, nil, base, nil, fake)
	groups, err := r.Groups()
	require.NoError(t, err)

	require.Len(t, groups, 1)
	assert.Equal(t, 0, fake.popCalls, "nothing stashed means nothing to pop")
}

// TestStagedWithStashRealGit is the end-to-end round trip on a real
// repository: the staged diff is computed against stashed-away unstaged
// content, and the working tree is bit-identical afterwards.
func TestStagedWithStashRealGit(t *testing.T) {
	repo := setupGitRepo(t)

	// Stage one version, then modify without staging.
	stagedPath := filepath.Join(repo, "main.go")
	require.NoError(t, os.WriteFile(stagedPath, []byte("package main // staged\n"), 0644))
	gitIn(t, repo, "add", "main.go")
	require.NoError(t, os.WriteFile(stagedPath, []byte("package main // unstaged\n"), 0644))

	r := NewResolver(model.ModeGitStagedWithStash, nil, repo, nil, vcs.NewGit(repo))
	groups, err := r.Groups()
	require.NoError(t, err)

	require.Len(t, groups, 1)
	assert.Equal(t, []string{"main.go"}, groups[0].Files)

	content, err := os.ReadFile(stagedPath)
	require.NoError(t, err)
	assert.Equal(t, "package main // unstaged\n", string(content),
		"unstaged modifications must survive the stash transaction unchanged")
}

// setupGitRepo builds a minimal committed repository for integration
// tests, mirroring the vcs package's own helper.
func setupGitRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	gitIn(t, dir, "init")
	gitIn(t, dir, "config", "user.email", "test@example.com")
	gitIn(t, dir, "config", "user.name", "Test User")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0644))
	gitIn(t, dir, "add", ".")
	gitIn(t, dir, "commit", "-m", "initial commit")

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	return resolved
}

func gitIn(t *testing.T, dir string, args ...string) {
	t.Helper()

	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, fmt.Sprintf("git %v failed: %s", args, out))
}
