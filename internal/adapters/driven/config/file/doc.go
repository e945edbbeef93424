// Package file is the TOML-backed implementation of the config store
// port. It reads the import configuration from a single file, validates
// it into domain form, and can watch the file for edits so a running
// scheduler picks up changes without a restart.
package file
