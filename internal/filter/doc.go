// Package filter defines the descriptor for one configured external
// lint/tidy tool and its two operations, Tidy and Lint.
//
// A Filter is passive configuration: which command to run, which files it
// applies to (include/exclude globs), how it is grouped across the
// resolved file set (run mode), and how its exit codes are interpreted.
// Actual process execution is delegated to the execute package.
//
// Both operations return a nil result when the target path fails the
// filter's include/exclude match; "not applicable" is an outcome, not an
// error.
package filter
