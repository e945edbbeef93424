package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			"config",
			&ConfigError{Key: "database", Reason: "database name must not be empty"},
			`config "database": database name must not be empty`,
		},
		{
			"connection",
			&ConnectionError{Target: "alpha:27017", Cause: errors.New("refused")},
			"connect alpha:27017: refused",
		},
		{
			"query",
			&QueryError{Query: `{"a": }`, Cause: errors.New("parse")},
			`query "{\"a\": }": parse`,
		},
		{
			"stream",
			&StreamError{Query: `{}`, Cause: errors.New("cursor lost")},
			`stream fault on query "{}": cursor lost`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorClassifiers(t *testing.T) {
	cfg := &ConfigError{Key: "k", Reason: "r"}
	conn := &ConnectionError{Target: "t", Cause: errors.New("x")}
	query := &QueryError{Query: "q", Cause: errors.New("x")}
	stream := &StreamError{Query: "q", Cause: errors.New("x")}

	assert.True(t, IsConfigError(cfg))
	assert.True(t, IsConnectionError(conn))
	assert.True(t, IsQueryError(query))
	assert.True(t, IsStreamError(stream))

	assert.False(t, IsConfigError(conn))
	assert.False(t, IsStreamError(query))
	assert.False(t, IsQueryError(stream))
}

func TestErrorClassifiersSeeThroughWrapping(t *testing.T) {
	inner := &StreamError{Query: "{}", Cause: errors.New("boom")}
	wrapped := fmt.Errorf("entity orders: %w", inner)

	assert.True(t, IsStreamError(wrapped))

	var se *StreamError
	require.ErrorAs(t, wrapped, &se)
	assert.Equal(t, "{}", se.Query)
}

func TestStreamErrorUnwrap(t *testing.T) {
	cause := errors.New("socket closed")
	err := &StreamError{Query: "{}", Cause: cause}

	assert.ErrorIs(t, err, cause)
}

func TestErrStreamDrainedIsNotAFault(t *testing.T) {
	assert.False(t, IsStreamError(ErrStreamDrained))
	assert.False(t, IsQueryError(ErrStreamDrained))
}
