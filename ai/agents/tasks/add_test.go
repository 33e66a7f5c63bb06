package tasks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/taskgpt/plugin/chat_apps/channels"
	"github.com/hrygo/taskgpt/plugin/chat_apps/channels/channeltest"
	"github.com/hrygo/taskgpt/store"
)

func TestAddTask(t *testing.T) {
	h := newHarness(t)
	h.llm.WithResponse(`{"name": "Walk dog", "date": "tomorrow"}`, taskPrompt, "walk dog tomorrow")
	ctx := context.Background()
	ch := channeltest.New()

	req, err := NewAddTask(ctx, h.deps, "walk dog tomorrow", ch)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Empty(t, ch.Prompts())

	ok, err := req.Handle(ctx, ch)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"Task 'Walk dog' added with due date 2026-03-11!"}, ch.Outputs())

	list, err := h.store.ListTasks(ctx, h.deps.UserID, store.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Walk dog", list[0].Title)
	assert.Equal(t, "2026-03-11", list[0].DueDate)
	assert.False(t, list[0].Done)

	require.Len(t, h.index.upserts, 1)
	assert.Equal(t, upsertCall{list[0].ID, "Walk dog", h.deps.UserID, "2026-03-11"}, h.index.upserts[0])
}

func TestAddTask_AsksForMissingFields(t *testing.T) {
	h := newHarness(t)
	h.llm.
		WithResponse(`{"name": "None", "date": "None"}`, taskPrompt, "I need to do something").
		WithResponse(`{"name": "Buy milk", "date": null}`, taskPrompt, `"buy milk"`).
		WithResponse(`{"name": "None", "date": "2026-03-13"}`, taskPrompt, `"friday"`)
	ctx := context.Background()
	ch := channeltest.New("buy milk", "friday")

	req, err := NewAddTask(ctx, h.deps, "I need to do something", ch)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, []string{promptTitleAndDate, promptDueDate}, ch.Prompts())
	assert.Equal(t, "Buy milk", req.title)
	assert.Equal(t, "2026-03-13", req.dueDate)
}

func TestAddTask_GivesUpAfterMaxAttempts(t *testing.T) {
	h := newHarness(t)
	h.deps.MaxAttempts = 2
	ch := channeltest.New("hmm", "not sure", "unused")

	req, err := NewAddTask(context.Background(), h.deps, "something", ch)
	require.NoError(t, err)
	assert.Nil(t, req)
	assert.Equal(t, []string{promptTitleAndDate, promptTitleAndDate}, ch.Prompts())
	assert.Equal(t, []string{msgAddGaveUp}, ch.Outputs())
	assert.Equal(t, 1, ch.Remaining())
}

func TestAddTask_RejectsMalformedDate(t *testing.T) {
	h := newHarness(t)
	h.llm.WithResponse(`{"name": "Call mom", "date": "whenever"}`, taskPrompt, "call mom whenever")
	ch := channeltest.New()

	req, err := NewAddTask(context.Background(), h.deps, "call mom whenever", ch)
	require.NoError(t, err)
	assert.Nil(t, req)
	assert.Equal(t, []string{msgInvalidDueDate}, ch.Outputs())
}

func TestAddTask_DuplicateTitle(t *testing.T) {
	h := newHarness(t)
	h.addTask(t, "Walk dog", "2026-03-12", false)
	h.llm.WithResponse(`{"name": "Walk dog", "date": "2026-03-20"}`, taskPrompt, "walk dog on the 20th")
	ctx := context.Background()
	ch := channeltest.New()

	req, err := NewAddTask(ctx, h.deps, "walk dog on the 20th", ch)
	require.NoError(t, err)
	require.NotNil(t, req)

	ok, err := req.Handle(ctx, ch)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{msgDuplicateTitle}, ch.Outputs())
	assert.Empty(t, h.index.upserts)
}

func TestAddTask_ChannelClosedWhileClarifying(t *testing.T) {
	h := newHarness(t)
	req, err := NewAddTask(context.Background(), h.deps, "something", channeltest.New())
	assert.Nil(t, req)
	assert.ErrorIs(t, err, channels.ErrClosed)
}
