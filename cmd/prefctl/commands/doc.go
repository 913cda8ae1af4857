// Package commands defines the prefctl CLI.
//
// Commands
//
//   - set    Store a typed value under a key
//   - get    Read a value, falling back to an optional default
//   - keys   List stored key names
//   - clear  Remove every entry
//   - watch  Stream committed generations
//
// The root command resolves the store directory and name from flags and an
// optional config.yaml in the store directory, then opens one shared
// preference store for the subcommand to use.
package commands
