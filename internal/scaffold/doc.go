// Package scaffold generates a starter burnish.toml for a project, one
// component per language toolchain. The go component also writes the
// supporting golangci-lint configuration and a go.mod tidiness check
// script that the generated commands reference.
//
// Init never overwrites an existing file at the target path; the user's
// config is theirs once it exists.
package scaffold
