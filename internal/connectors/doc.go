// Package connectors holds datastore implementations behind the
// driven.Datastore port. Each connector knows how to run filter queries
// against a specific kind of document store.
//
// Connectors hand the composition root a driven.OpenDatastore; which one
// the binary uses is decided at wiring time.
package connectors
