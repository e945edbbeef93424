// Package domain defines the core business entities for Mongoflat and is
// the innermost layer of the hexagonal architecture.
//
// # Architectural Position
//
// Everything depends on domain; domain depends on nothing but the standard
// library. The types here model what flows through an import: store
// documents as an ordered, tagged value tree, the flat records they are
// reduced to, the sync phases that drive a run, and the error taxonomy the
// rest of the system reports against.
//
// # Import Rules
//
//   - MAY import: standard library only
//   - MUST NOT import: ports, services, adapters, or any third-party package
//
// Keeping the value model free of driver types is what lets the flattening
// and query layers run identically against a live store, a fixture file, or
// a test literal.
package domain
