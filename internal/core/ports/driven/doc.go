// Package driven defines the interfaces that core calls OUT to
// infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Datastore: Runs filter queries against the document store
//   - Cursor: Streams one query's result documents
//   - RecordSink: Receives imported flat records
//   - StateStore: Persists run watermarks and substitution properties
//   - RunStore: Persists import run summaries
//   - RecordBrowser: Reads stored records back for inspection
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
