// Package config loads and validates the burnish configuration file.
//
// The canonical format is TOML (burnish.toml), parsed with
// github.com/pelletier/go-toml/v2. A JSONC variant (burnish.json or
// burnish.jsonc) is also accepted; comments are stripped with
// github.com/tidwall/jsonc before parsing with encoding/json.
//
// Validation happens entirely at load time. The engine and filter layers
// receive already-validated values and never re-check the config format.
package config
