// Package memstore implements the datastore port against an in-memory
// document store.
//
// It exists for development and testing: fixtures load from JSON or YAML
// files, queries evaluate a useful subset of the store's filter syntax,
// and cursors behave like real ones, including mid-stream faults when
// the context is cancelled. The import pipeline cannot tell it apart
// from a live deployment.
package memstore
