package services

import (
	"regexp"

	"github.com/mongoflat/mongoflat/internal/core/domain"
)

// Token names substituted into query text.
const (
	// TokenLastIndexTime carries the watermark of the previous run, an
	// ISO-8601 UTC instant. Delta queries compare against it.
	TokenLastIndexTime = "last_index_time"

	// TokenDeltaID carries the current change marker's id during delta
	// import.
	TokenDeltaID = "delta._id"
)

var tokenPattern = regexp.MustCompile(`\$\{([^{}]+)\}`)

// Session is the state of one import run: the active phase, the entity
// under import, the store properties and the substitution tokens. It is
// the ImportContext the runner hands its processor.
//
// A session belongs to a single run on a single goroutine; it is not
// safe for concurrent use.
type Session struct {
	phase  domain.SyncPhase
	entity domain.Entity
	props  map[string]string
	tokens map[string]string
}

// NewSession creates a session for one entity. props is the flat store
// property map; the session keeps its own copy.
func NewSession(entity domain.Entity, props map[string]string) *Session {
	copied := make(map[string]string, len(props))
	for k, v := range props {
		copied[k] = v
	}
	return &Session{
		entity: entity,
		props:  copied,
		tokens: make(map[string]string),
	}
}

// Phase returns the active sync phase.
func (s *Session) Phase() domain.SyncPhase { return s.phase }

// SetPhase moves the session to a new sync phase.
func (s *Session) SetPhase(phase domain.SyncPhase) { s.phase = phase }

// Entity returns the entity under import.
func (s *Session) Entity() domain.Entity { return s.entity }

// EntityAttribute returns the named attribute of the entity under import.
func (s *Session) EntityAttribute(name string) string {
	return s.entity.Attribute(name)
}

// Property returns a store property by name, or "" when unset.
func (s *Session) Property(name string) string { return s.props[name] }

// SetToken sets a substitution value for ${name}.
func (s *Session) SetToken(name, value string) { s.tokens[name] = value }

// ClearToken removes a substitution value.
func (s *Session) ClearToken(name string) { delete(s.tokens, name) }

// ReplaceTokens substitutes every ${name} occurrence in text. Run tokens
// win over the entity's configured tokens. A name with no value in either
// place is left exactly as written, so a misconfigured token surfaces in
// the query the store rejects rather than vanishing silently.
func (s *Session) ReplaceTokens(text string) string {
	return tokenPattern.ReplaceAllStringFunc(text, func(m string) string {
		name := m[2 : len(m)-1]
		if v, ok := s.tokens[name]; ok {
			return v
		}
		if v, ok := s.entity.Tokens[name]; ok {
			return v
		}
		return m
	})
}
