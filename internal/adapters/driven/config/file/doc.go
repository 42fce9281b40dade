// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// ConfigStore keeps application settings in a TOML file under the vaultsync
// config directory. Dotted keys ("vault.root") map to nested TOML tables on
// disk so the file stays hand-editable.
package file
