package tasks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/taskgpt/ai/routing"
	"github.com/hrygo/taskgpt/plugin/chat_apps/channels/channeltest"
)

func TestDispatcher(t *testing.T) {
	h := newHarness(t)
	h.llm.WithResponse(`{"name": "Walk dog", "date": "2026-03-12"}`, taskPrompt, "walk dog")
	d := NewDispatcher(h.deps)
	ctx := context.Background()

	req, err := d.Dispatch(ctx, routing.IntentUnknown, "tell me a joke", channeltest.New())
	require.NoError(t, err)
	assert.True(t, req == nil)

	req, err = d.Dispatch(ctx, routing.IntentAddTask, "walk dog", channeltest.New())
	require.NoError(t, err)
	assert.IsType(t, &AddTask{}, req)

	req, err = d.Dispatch(ctx, routing.IntentViewTasks, "all", channeltest.New())
	require.NoError(t, err)
	assert.IsType(t, &ViewTasks{}, req)
}

func TestDispatcher_AbandonedRequestIsUntypedNil(t *testing.T) {
	h := newHarness(t)
	h.deps.MaxAttempts = 1
	d := NewDispatcher(h.deps)

	req, err := d.Dispatch(context.Background(), routing.IntentAddTask, "something", channeltest.New("still nothing"))
	require.NoError(t, err)
	assert.True(t, req == nil, "got %#v", req)
}
