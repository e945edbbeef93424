package memstore

import (
	"context"

	"github.com/mongoflat/mongoflat/internal/core/domain"
	"github.com/mongoflat/mongoflat/internal/core/ports/driven"
)

// cursor walks a snapshot of matched documents. Cancelling the context
// surfaces as a cursor error on the next advance, the same way a network
// datastore would fail mid-stream.
type cursor struct {
	docs   []domain.Document
	pos    int
	err    error
	closed bool
}

var _ driven.Cursor = (*cursor)(nil)

func (c *cursor) Next(ctx context.Context) bool {
	if c.closed || c.err != nil {
		return false
	}
	if err := ctx.Err(); err != nil {
		c.err = err
		return false
	}
	if c.pos >= len(c.docs) {
		return false
	}
	c.pos++
	return true
}

func (c *cursor) Document() domain.Document {
	if c.pos == 0 || c.pos > len(c.docs) {
		return nil
	}
	return c.docs[c.pos-1]
}

func (c *cursor) Err() error {
	return c.err
}

func (c *cursor) Close(ctx context.Context) error {
	c.closed = true
	return nil
}
