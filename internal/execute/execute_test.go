package execute

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRunSuccess verifies capture of stdout and a zero exit code.
func TestRunSuccess(t *testing.T) {
	r, err := Run("sh", []string{"-c", "echo out; echo err >&2"}, t.TempDir(), nil, []int{0})
	require.NoError(t, err)

	assert.Equal(t, 0, r.ExitCode)
	assert.Equal(t, "out\n", r.Stdout)
	assert.Equal(t, "err\n", r.Stderr)
}

// TestRunAcceptedNonZero verifies that a non-zero code in the accepted
// set is returned as a Result, not an error. Lint filters rely on this to
// observe their failure codes.
func TestRunAcceptedNonZero(t *testing.T) {
	r, err := Run("sh", []string{"-c", "exit 3"}, t.TempDir(), nil, []int{0, 3})
	require.NoError(t, err)
	assert.Equal(t, 3, r.ExitCode)
}

// TestRunUnexpectedExitCode verifies the typed error for codes outside
// the accepted set, including the captured stderr.
func TestRunUnexpectedExitCode(t *testing.T) {
	_, err := Run("sh", []string{"-c", "echo broken >&2; exit 7"}, t.TempDir(), nil, []int{0})
	require.Error(t, err)

	var ece *ExitCodeError
	require.True(t, errors.As(err, &ece))
	assert.Equal(t, 7, ece.ExitCode)
	assert.Equal(t, "broken", ece.Stderr)
	assert.Contains(t, err.Error(), "unexpected code 7")
}

// TestRunLaunchFailure verifies that a missing executable is a plain
// error, distinct from an unexpected exit code.
func TestRunLaunchFailure(t *testing.T) {
	_, err := Run("definitely-not-a-real-binary-xyz", nil, t.TempDir(), nil, []int{0})
	require.Error(t, err)

	var ece *ExitCodeError
	assert.False(t, errors.As(err, &ece), "launch failures are not exit-code errors")
	assert.Contains(t, err.Error(), "failed to run")
}

// TestRunWorkingDirectory verifies the command runs in the requested
// directory.
func TestRunWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker.txt"), []byte("x"), 0644))

	r, err := Run("sh", []string{"-c", "ls"}, dir, nil, []int{0})
	require.NoError(t, err)
	assert.Contains(t, r.Stdout, "marker.txt")
}

// TestRunEnvironment verifies that extra environment variables reach the
// command on top of the inherited environment.
func TestRunEnvironment(t *testing.T) {
	r, err := Run("sh", []string{"-c", "printf %s \"$BURNISH_TEST_VAR\""}, t.TempDir(),
		map[string]string{"BURNISH_TEST_VAR": "hello"}, []int{0})
	require.NoError(t, err)
	assert.Equal(t, "hello", r.Stdout)
}
