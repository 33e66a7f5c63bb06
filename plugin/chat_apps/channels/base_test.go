package channels

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelError(t *testing.T) {
	err := Closed(io.EOF)
	assert.True(t, errors.Is(err, ErrClosed))
	assert.True(t, errors.Is(err, io.EOF))
	assert.False(t, errors.Is(err, ErrInvalidPayload))
	assert.Equal(t, "CLOSED: channel closed: EOF", err.Error())
	assert.Equal(t, "CLOSED: channel closed", ErrClosed.Error())
}
