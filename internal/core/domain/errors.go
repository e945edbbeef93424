package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across layers.
var (
	// ErrStreamDrained reports that a record stream has yielded its last
	// row. It is the stream's terminal state, not a fault; once returned
	// it is returned forever.
	ErrStreamDrained = errors.New("record stream drained")

	// ErrNotFound reports a missing key in a state or run store.
	ErrNotFound = errors.New("not found")

	// ErrRunInProgress reports an import attempted while another run is
	// still going. Runs never overlap.
	ErrRunInProgress = errors.New("an import run is already in progress")
)

// ConfigError reports invalid or missing configuration, identified before
// any store traffic happens.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %q: %s", e.Key, e.Reason)
}

// ConnectionError reports a failure to reach or authenticate against the
// store.
type ConnectionError struct {
	Target string
	Cause  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Target, e.Cause)
}

func (e *ConnectionError) Unwrap() error { return e.Cause }

// QueryError reports a query the store rejected on submission, before any
// row was produced. The query text is the already-substituted form that
// was sent.
type QueryError struct {
	Query string
	Cause error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %q: %v", e.Query, e.Cause)
}

func (e *QueryError) Unwrap() error { return e.Cause }

// StreamError reports a cursor that failed mid-iteration, after the query
// was accepted. The stream that raises it is dead; re-running the query is
// the only recovery.
type StreamError struct {
	Query string
	Cause error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream fault on query %q: %v", e.Query, e.Cause)
}

func (e *StreamError) Unwrap() error { return e.Cause }

// IsConfigError reports whether any error in err's chain is a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsConnectionError reports whether any error in err's chain is a
// ConnectionError.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// IsQueryError reports whether any error in err's chain is a QueryError.
func IsQueryError(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe)
}

// IsStreamError reports whether any error in err's chain is a StreamError.
func IsStreamError(err error) bool {
	var se *StreamError
	return errors.As(err, &se)
}
