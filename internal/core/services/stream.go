package services

import (
	"context"

	"github.com/mongoflat/mongoflat/internal/core/domain"
	"github.com/mongoflat/mongoflat/internal/core/ports/driven"
	"github.com/mongoflat/mongoflat/internal/flatten"
)

// RecordStream adapts one cursor into a pull stream of flat records. The
// stream owns the cursor: the moment the cursor stops producing, whether
// by exhaustion or by fault, the stream closes it. Callers never see a
// half-open cursor.
//
// Exhaustion latches. After the first ErrStreamDrained every later pull
// returns ErrStreamDrained again without touching the store. A fault
// latches the same way, as a StreamError carrying the query that was
// running.
type RecordStream struct {
	cursor    driven.Cursor
	query     string
	mapFields bool
	terminal  error
}

// NewRecordStream wraps a cursor produced by the given query text. When
// mapFields is false, records keep the store's top-level keys instead of
// dotted paths.
func NewRecordStream(cursor driven.Cursor, query string, mapFields bool) *RecordStream {
	return &RecordStream{cursor: cursor, query: query, mapFields: mapFields}
}

// Next pulls the following record. It returns domain.ErrStreamDrained
// once the results are exhausted and a StreamError if the cursor broke
// mid-iteration; both outcomes are terminal and repeat on later calls.
func (s *RecordStream) Next(ctx context.Context) (domain.FlatRecord, error) {
	if s.terminal != nil {
		return nil, s.terminal
	}

	if s.cursor.Next(ctx) {
		doc := s.cursor.Document()
		if s.mapFields {
			return flatten.Flatten(doc), nil
		}
		return flatten.TopLevel(doc), nil
	}

	// The cursor stopped. Close it now, then work out why it stopped.
	cause := s.cursor.Err()
	closeErr := s.cursor.Close(ctx)

	switch {
	case cause != nil:
		s.terminal = &domain.StreamError{Query: s.query, Cause: cause}
	case closeErr != nil:
		s.terminal = &domain.StreamError{Query: s.query, Cause: closeErr}
	default:
		s.terminal = domain.ErrStreamDrained
	}
	return nil, s.terminal
}

// Drained reports whether the stream ended cleanly.
func (s *RecordStream) Drained() bool {
	return s.terminal == domain.ErrStreamDrained
}

// Close abandons the stream before exhaustion and releases its cursor.
// Pulling after Close reports ErrStreamDrained. Closing an already
// terminal stream is harmless.
func (s *RecordStream) Close(ctx context.Context) error {
	if s.terminal == nil {
		s.terminal = domain.ErrStreamDrained
	}
	return s.cursor.Close(ctx)
}
