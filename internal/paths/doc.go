// Package paths computes the working set of files for one invocation.
//
// A Resolver takes a selection mode, an optional list of explicit CLI
// paths, a base directory, and the project's exclude globs, and produces
// directory-grouped file lists (model.PathGroup). Resolution happens at
// most once per Resolver; the result is memoized.
//
// The git-based modes delegate to a VCS adapter. GitStagedWithStash wraps
// the staged-diff computation in a stash transaction whose release (the
// stash pop) is guaranteed on every exit path; a failed pop surfaces as a
// StashPopError because it leaves the working tree altered.
package paths
