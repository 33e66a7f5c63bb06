package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hrygo/taskgpt/plugin/chat_apps"
	"github.com/hrygo/taskgpt/plugin/chat_apps/channels"
)

func TestChannel(t *testing.T) {
	defer goleak.VerifyNone(t)

	var out bytes.Buffer
	ch := New(strings.NewReader("alice\r\nbuy milk\n"), &out)
	ctx := context.Background()

	assert.Equal(t, chat_apps.PlatformConsole, ch.Platform())

	got, err := ch.Input(ctx, "Enter your username: ")
	require.NoError(t, err)
	assert.Equal(t, "alice", got)

	require.NoError(t, ch.Output(ctx, "Welcome to TaskGPT, alice!"))

	got, err = ch.Input(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "buy milk", got)

	_, err = ch.Input(ctx, "> ")
	assert.True(t, errors.Is(err, channels.ErrClosed))

	assert.Equal(t, "Enter your username: Welcome to TaskGPT, alice!\n> ", out.String())
}

func TestChannel_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := New(strings.NewReader(""), &bytes.Buffer{})
	_, err := ch.Input(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
}
