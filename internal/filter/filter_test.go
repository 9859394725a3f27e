package filter

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/burnish/internal/execute"
)

// newTestFilter builds a files-mode filter rooted at a fresh temp dir.
// Tests override fields as needed.
func newTestFilter(t *testing.T, cmd ...string) *Filter {
	t.Helper()
	return &Filter{
		Name:                 "test",
		Root:                 t.TempDir(),
		Capability:           CapabilityBoth,
		RunMode:              RunModeFiles,
		Include:              []string{"**/*.go"},
		Cmd:                  cmd,
		OkExitCodes:          []int{0},
		LintFailureExitCodes: []int{1},
	}
}

func writeRootFile(t *testing.T, f *Filter, rel, content string) {
	t.Helper()
	path := filepath.Join(f.Root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// TestParseRunMode covers the three modes, the files default, and
// rejection of unknown values.
func TestParseRunMode(t *testing.T) {
	m, err := ParseRunMode("")
	require.NoError(t, err)
	assert.Equal(t, RunModeFiles, m, "empty run mode defaults to files")

	m, err = ParseRunMode("root")
	require.NoError(t, err)
	assert.Equal(t, RunModeRoot, m)

	_, err = ParseRunMode("everything")
	require.Error(t, err)
}

// TestParseCapability covers the capability values and the action checks.
func TestParseCapability(t *testing.T) {
	c, err := ParseCapability("both")
	require.NoError(t, err)
	assert.True(t, c.CanTidy())
	assert.True(t, c.CanLint())

	c, err = ParseCapability("lint")
	require.NoError(t, err)
	assert.False(t, c.CanTidy())
	assert.True(t, c.CanLint())

	_, err = ParseCapability("format")
	require.Error(t, err)
}

// TestMatches verifies include/exclude glob semantics on root-relative
// paths, including ** crossing directory separators.
func TestMatches(t *testing.T) {
	f := &Filter{
		Include: []string{"**/*.go"},
		Exclude: []string{"vendor/**", "**/*.pb.go"},
	}

	assert.True(t, f.matches("main.go"))
	assert.True(t, f.matches(filepath.Join("deep", "nested", "pkg", "x.go")))
	assert.False(t, f.matches("README.md"), "include miss")
	assert.False(t, f.matches(filepath.Join("vendor", "lib", "x.go")), "exclude hit")
	assert.False(t, f.matches(filepath.Join("gen", "api.pb.go")), "exclude hit")
}

// TestTidyNotApplicable verifies the nil result for a path failing the
// include match.
func TestTidyNotApplicable(t *testing.T) {
	f := newTestFilter(t, "true")

	r, err := f.Tidy("README.md", []string{"README.md"})
	require.NoError(t, err)
	assert.Nil(t, r, "non-matching path must be skipped, not run")
}

// TestTidyChanged verifies change detection when the tool rewrites its
// target.
func TestTidyChanged(t *testing.T) {
	// The appended path lands in $0 of the sh -c script.
	f := newTestFilter(t, "sh", "-c", `echo "// tidied" >> "$0"`)
	writeRootFile(t, f, "main.go", "package main\n")

	r, err := f.Tidy("main.go", []string{"main.go"})
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.True(t, r.Changed)
}

// TestTidyUnchanged verifies that a tool which inspects but does not
// modify reports no change.
func TestTidyUnchanged(t *testing.T) {
	f := newTestFilter(t, "true")
	writeRootFile(t, f, "main.go", "package main\n")

	r, err := f.Tidy("main.go", []string{"main.go"})
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.False(t, r.Changed)
}

// TestTidyExecutionError verifies that an exit code outside OkExitCodes
// surfaces as an error, not a result.
func TestTidyExecutionError(t *testing.T) {
	f := newTestFilter(t, "sh", "-c", "exit 9")
	writeRootFile(t, f, "main.go", "package main\n")

	r, err := f.Tidy("main.go", []string{"main.go"})
	require.Error(t, err)
	assert.Nil(t, r)

	var ece *execute.ExitCodeError
	assert.True(t, errors.As(err, &ece))
}

// TestLintPass verifies Ok classification for codes in OkExitCodes.
func TestLintPass(t *testing.T) {
	f := newTestFilter(t, "sh", "-c", "echo clean")
	writeRootFile(t, f, "main.go", "package main\n")

	r, err := f.Lint("main.go", []string{"main.go"})
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.True(t, r.Ok)
	assert.Equal(t, "clean\n", r.Stdout)
}

// TestLintFailure verifies that a code in LintFailureExitCodes is a
// structured finding: Ok=false with captured output, no error.
func TestLintFailure(t *testing.T) {
	f := newTestFilter(t, "sh", "-c", "echo finding; exit 1")
	writeRootFile(t, f, "main.go", "package main\n")

	r, err := f.Lint("main.go", []string{"main.go"})
	require.NoError(t, err, "a lint finding is not an execution error")
	require.NotNil(t, r)
	assert.False(t, r.Ok)
	assert.Equal(t, "finding\n", r.Stdout)
}

// TestLintUnexpectedExitCode verifies that a code in neither set is an
// execution error.
func TestLintUnexpectedExitCode(t *testing.T) {
	f := newTestFilter(t, "sh", "-c", "exit 9")
	writeRootFile(t, f, "main.go", "package main\n")

	_, err := f.Lint("main.go", []string{"main.go"})
	require.Error(t, err)

	var ece *execute.ExitCodeError
	require.True(t, errors.As(err, &ece))
	assert.Equal(t, 9, ece.ExitCode)
}

// TestDirModeApplicability verifies that a dirs-mode invocation is
// applicable iff any file in the group matches, and that only matching
// files count as change-detection targets.
func TestDirModeApplicability(t *testing.T) {
	f := newTestFilter(t, "true")
	f.RunMode = RunModeDirs
	writeRootFile(t, f, "src/a.go", "package a\n")
	writeRootFile(t, f, "src/notes.txt", "notes\n")

	r, err := f.Tidy("src", []string{filepath.Join("src", "a.go"), filepath.Join("src", "notes.txt")})
	require.NoError(t, err)
	assert.NotNil(t, r, "group with one matching file is applicable")

	r, err = f.Tidy("docs", []string{filepath.Join("docs", "guide.md")})
	require.NoError(t, err)
	assert.Nil(t, r, "group with no matching files is not applicable")
}

// TestCommandArgs verifies argv assembly order: base args, action flags,
// path flag, path.
func TestCommandArgs(t *testing.T) {
	f := &Filter{
		Cmd:       []string{"mytool", "--base"},
		LintFlags: []string{"--check"},
		PathFlag:  "--file",
	}

	args := f.commandArgs(f.LintFlags, "src/main.go")
	assert.Equal(t, []string{"--base", "--check", "--file", "src/main.go"}, args)

	f.OmitPath = true
	args = f.commandArgs(f.LintFlags, "src/main.go")
	assert.Equal(t, []string{"--base", "--check"}, args,
		"omit_path drops the path flag and the path itself")
}

// TestConfigKey verifies report namespacing.
func TestConfigKey(t *testing.T) {
	f := &Filter{Name: "rustfmt"}
	assert.Equal(t, "commands.rustfmt", f.ConfigKey())
}
