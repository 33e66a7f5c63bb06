package tasks

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/taskgpt/ai/vector"
	"github.com/hrygo/taskgpt/plugin/chat_apps/channels/channeltest"
)

func confirmationsFor(title string) []string {
	out := make([]string, len(EditConfirmations))
	for i, c := range EditConfirmations {
		out[i] = c
		if i == len(EditConfirmations)-1 {
			out[i] = fmt.Sprintf(c, title)
		}
	}
	return out
}

func TestEditTask(t *testing.T) {
	h := newHarness(t)
	task := h.addTask(t, "Walk dog", "2026-03-12", false)
	h.llm.
		WithResponse(fmt.Sprintf(`{"task_id": %d, "task_title": null}`, task.ID), editRefPrompt).
		WithResponse(`{"title": "Walk the dog", "due_date": "next week"}`, editPrompt)
	ctx := context.Background()
	ch := channeltest.New("call it walk the dog and push it a week")

	req, err := NewEditTask(ctx, h.deps, fmt.Sprintf("edit task %d", task.ID), ch)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, []string{fmt.Sprintf("Cool, we're editing: 'Walk dog' (ID: %d)", task.ID)}, ch.Outputs())
	assert.Equal(t, []string{"What would you like to change about 'Walk dog'? "}, ch.Prompts())

	ok, err := req.Handle(ctx, ch)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, confirmationsFor("Walk the dog"), ch.Outputs()[1])

	got, err := h.store.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Walk the dog", got.Title)
	assert.Equal(t, "2026-03-17", got.DueDate)
	assert.Equal(t, []upsertCall{{task.ID, "Walk the dog", h.deps.UserID, "2026-03-17"}}, h.index.upserts)
}

func TestEditTask_ManualFallbackWithMalformedDate(t *testing.T) {
	h := newHarness(t)
	task := h.addTask(t, "Walk dog", "2026-03-12", false)
	h.llm.WithResponse(fmt.Sprintf(`{"task_id": %d}`, task.ID), editRefPrompt)
	ctx := context.Background()
	ch := channeltest.New("hmm", "", "2026-13-45")

	req, err := NewEditTask(ctx, h.deps, "edit it", ch)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, []string{
		"What would you like to change about 'Walk dog'? ",
		promptNewTitle,
		promptNewDueDate,
	}, ch.Prompts())

	ok, err := req.Handle(ctx, ch)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, msgBadDateFormat, ch.Outputs()[len(ch.Outputs())-1])

	got, err := h.store.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.UpdatedTs, got.UpdatedTs)
	assert.Equal(t, "2026-03-12", got.DueDate)
	assert.Empty(t, h.index.upserts)
}

func TestEditTask_NothingToApply(t *testing.T) {
	h := newHarness(t)
	task := h.addTask(t, "Walk dog", "", false)
	h.llm.WithResponse(fmt.Sprintf(`{"task_id": %d}`, task.ID), editRefPrompt)
	ch := channeltest.New("dunno", "", "")

	req, err := NewEditTask(context.Background(), h.deps, "edit it", ch)
	require.NoError(t, err)
	ok, err := req.Handle(context.Background(), ch)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, msgNothingToApply, ch.Outputs()[len(ch.Outputs())-1])
}

func TestEditTask_DuplicateTitle(t *testing.T) {
	h := newHarness(t)
	h.addTask(t, "Buy milk", "", false)
	task := h.addTask(t, "Walk dog", "", false)
	h.llm.
		WithResponse(fmt.Sprintf(`{"task_id": %d}`, task.ID), editRefPrompt).
		WithResponse(`{"title": "Buy milk", "due_date": null}`, editPrompt)
	ch := channeltest.New("rename it to buy milk")

	req, err := NewEditTask(context.Background(), h.deps, "edit it", ch)
	require.NoError(t, err)
	ok, err := req.Handle(context.Background(), ch)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, msgDuplicateTitle, ch.Outputs()[len(ch.Outputs())-1])
}

func TestEditTask_CancelledAndNotFound(t *testing.T) {
	h := newHarness(t)
	task := h.addTask(t, "Walk dog", "", false)
	h.index.candidates = []vector.Candidate{{TaskID: task.ID, Title: task.Title}}
	h.llm.
		WithResponse(`{"task_id": null, "task_title": "dog"}`, editRefPrompt, "the dog one").
		WithResponse(`{"task_id": 999, "task_title": null}`, editRefPrompt, "task 999")

	ch := channeltest.New("nope")
	req, err := NewEditTask(context.Background(), h.deps, "the dog one", ch)
	require.NoError(t, err)
	assert.Nil(t, req)
	assert.Equal(t, msgEditCancelled, ch.Outputs()[len(ch.Outputs())-1])

	ch = channeltest.New()
	req, err = NewEditTask(context.Background(), h.deps, "task 999", ch)
	require.NoError(t, err)
	assert.Nil(t, req)
	assert.Equal(t, []string{msgTaskNotFound}, ch.Outputs())
}
