// Package model defines the domain types for the burnish CLI.
//
// These types are shared across the path resolver, the filter layer, and
// the execution engine: the file-selection Mode, the directory-grouped
// PathGroup produced by resolution, the per-path ActionError collected
// during filter execution, and the terminal Exit value of one invocation.
//
// The package also defines CLIError, the error type that carries a process
// exit code from any layer up to the CLI entry point.
package model
