package domain

import "strings"

// Entity attribute names, as they appear in configuration.
const (
	AttrName             = "name"
	AttrCollection       = "collection"
	AttrQuery            = "query"
	AttrDeltaQuery       = "deltaQuery"
	AttrDeltaImportQuery = "deltaImportQuery"
)

// Entity describes one importable unit: a collection plus the query text
// for each sync phase. Query texts are raw filter documents and may carry
// ${token} placeholders that are substituted per run.
type Entity struct {
	Name             string
	Collection       string
	Query            string
	DeltaQuery       string
	DeltaImportQuery string

	// Tokens are extra substitution values configured on the entity,
	// merged under the run-scoped ones at substitution time.
	Tokens map[string]string
}

// Attribute returns the named attribute's configured text, or "" for an
// unset or unknown attribute. The processor resolves its per-phase query
// through this accessor.
func (e Entity) Attribute(name string) string {
	switch name {
	case AttrName:
		return e.Name
	case AttrCollection:
		return e.Collection
	case AttrQuery:
		return e.Query
	case AttrDeltaQuery:
		return e.DeltaQuery
	case AttrDeltaImportQuery:
		return e.DeltaImportQuery
	default:
		return ""
	}
}

// QueryAttribute returns the attribute name the given phase reads its
// query from, or "" for a phase that runs no query.
func QueryAttribute(phase SyncPhase) string {
	switch phase {
	case PhaseFullImport:
		return AttrQuery
	case PhaseDeltaDiscovery:
		return AttrDeltaQuery
	case PhaseDeltaImport:
		return AttrDeltaImportQuery
	default:
		return ""
	}
}

// Validate reports a ConfigError when the entity is not runnable at all.
// Phase-specific attributes are checked at run time because an entity may
// legitimately configure only some phases.
func (e Entity) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return &ConfigError{Key: AttrName, Reason: "entity name must not be empty"}
	}
	if strings.TrimSpace(e.Collection) == "" {
		return &ConfigError{Key: AttrCollection, Reason: "collection must not be empty"}
	}
	return nil
}
