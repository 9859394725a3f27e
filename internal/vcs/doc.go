// Package vcs provides the version-control adapter for burnish.
//
// This package wraps Git CLI commands (via os/exec) to list modified and
// staged files, stash and restore unstaged changes, and query ignore rules.
// It is the only layer that talks to git; the path resolver consumes it
// through a small interface.
//
// Design decisions:
//   - We shell out to `git` rather than using a Go Git library because the
//     stash and check-ignore semantics must match the git binary exactly.
//   - All paths returned by the adapter are absolute, so callers can
//     re-relativize them against whatever base directory they resolve from.
//   - Git failures are wrapped in model.CLIError to enable proper CLI exit
//     code handling.
package vcs
