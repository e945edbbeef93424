package domain

import "strings"

// SyncPhase names the stage of a synchronisation run. Each phase selects a
// different query attribute on the entity and a different row shape from
// the processor.
type SyncPhase int

const (
	// PhaseNone is the zero phase. A processor prepared for it yields
	// nothing, which is also how unrecognised phase names behave.
	PhaseNone SyncPhase = iota

	// PhaseFullImport re-reads every document the entity's import query
	// selects.
	PhaseFullImport

	// PhaseDeltaDiscovery finds the identities of documents changed since
	// the previous run.
	PhaseDeltaDiscovery

	// PhaseDeltaImport re-fetches one changed document per discovered
	// identity.
	PhaseDeltaImport
)

// String returns the phase's canonical name.
func (p SyncPhase) String() string {
	switch p {
	case PhaseFullImport:
		return "full-import"
	case PhaseDeltaDiscovery:
		return "delta-discovery"
	case PhaseDeltaImport:
		return "delta-import"
	default:
		return "none"
	}
}

// ParsePhase maps a phase name to its SyncPhase. Matching is
// case-insensitive and accepts the short aliases used on the command line.
// Unknown names map to PhaseNone rather than an error; an unknown phase
// renders the processor inert instead of failing the run.
func ParsePhase(s string) SyncPhase {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full-import", "full", "full_dump":
		return PhaseFullImport
	case "delta-discovery", "discover", "find_delta":
		return PhaseDeltaDiscovery
	case "delta-import", "delta", "delta_dump":
		return PhaseDeltaImport
	default:
		return PhaseNone
	}
}
