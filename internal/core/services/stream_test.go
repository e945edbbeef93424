package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mongoflat/mongoflat/internal/core/domain"
	"github.com/mongoflat/mongoflat/internal/docparse"
)

func doc(t *testing.T, text string) domain.Document {
	t.Helper()
	d, err := docparse.Document(text)
	require.NoError(t, err)
	return d
}

func TestRecordStreamYieldsFlattenedRecords(t *testing.T) {
	cur := newFakeCursor(
		doc(t, `{"_id": "a", "user": {"name": "ada"}}`),
		doc(t, `{"_id": "b", "tags": [1, 2]}`),
	)
	stream := NewRecordStream(cur, `{}`, true)

	first, err := stream.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.FlatRecord{"_id": "a", "user.name": "ada"}, first)

	second, err := stream.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.FlatRecord{"_id": "b", "tags": []any{int64(1), int64(2)}}, second)
}

func TestRecordStreamWithoutFieldMapping(t *testing.T) {
	cur := newFakeCursor(doc(t, `{"_id": "a", "user": {"name": "ada"}}`))
	stream := NewRecordStream(cur, `{}`, false)

	rec, err := stream.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.FlatRecord{"_id": "a", "user": `{"name":"ada"}`}, rec)
}

func TestRecordStreamDrainClosesCursorAndLatches(t *testing.T) {
	cur := newFakeCursor(doc(t, `{"_id": "a"}`))
	stream := NewRecordStream(cur, `{}`, true)

	_, err := stream.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, cur.closes, "cursor must stay open while records remain")

	_, err = stream.Next(context.Background())
	assert.ErrorIs(t, err, domain.ErrStreamDrained)
	assert.Equal(t, 1, cur.closes, "exhaustion closes the cursor eagerly")
	assert.True(t, stream.Drained())

	// Latched: pulling again neither re-queries nor re-closes.
	_, err = stream.Next(context.Background())
	assert.ErrorIs(t, err, domain.ErrStreamDrained)
	assert.Equal(t, 1, cur.closes)
}

func TestRecordStreamFaultMidIteration(t *testing.T) {
	cur := newFakeCursor(doc(t, `{"_id": "a"}`), doc(t, `{"_id": "b"}`))
	cur.failAt = 1
	cur.err = errors.New("connection reset")
	stream := NewRecordStream(cur, `{"x": 1}`, true)

	_, err := stream.Next(context.Background())
	require.NoError(t, err)

	_, err = stream.Next(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsStreamError(err))
	assert.Equal(t, 1, cur.closes, "fault closes the cursor eagerly")
	assert.False(t, stream.Drained())

	var se *domain.StreamError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, `{"x": 1}`, se.Query)
	assert.ErrorIs(t, err, cur.err)

	// Faults latch exactly like exhaustion.
	_, again := stream.Next(context.Background())
	assert.Equal(t, err, again)
	assert.Equal(t, 1, cur.closes)
}

func TestRecordStreamCloseErrorIsAFault(t *testing.T) {
	cur := newFakeCursor()
	cur.closeErr = errors.New("release failed")
	stream := NewRecordStream(cur, `{}`, true)

	_, err := stream.Next(context.Background())
	assert.True(t, domain.IsStreamError(err))
	assert.ErrorIs(t, err, cur.closeErr)
}

func TestRecordStreamExplicitClose(t *testing.T) {
	cur := newFakeCursor(doc(t, `{"_id": "a"}`), doc(t, `{"_id": "b"}`))
	stream := NewRecordStream(cur, `{}`, true)

	_, err := stream.Next(context.Background())
	require.NoError(t, err)

	require.NoError(t, stream.Close(context.Background()))
	assert.Equal(t, 1, cur.closes)

	_, err = stream.Next(context.Background())
	assert.ErrorIs(t, err, domain.ErrStreamDrained)

	// Double close is harmless.
	require.NoError(t, stream.Close(context.Background()))
}
