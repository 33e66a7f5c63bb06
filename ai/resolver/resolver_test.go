package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/taskgpt/ai/vector"
	"github.com/hrygo/taskgpt/plugin/chat_apps/channels"
	"github.com/hrygo/taskgpt/plugin/chat_apps/channels/channeltest"
)

type fakeIndex struct {
	candidates []vector.Candidate
	err        error
	queries    []string
	topKs      []int
}

func (f *fakeIndex) Upsert(context.Context, int32, string, int32, string) error { return nil }
func (f *fakeIndex) Remove(context.Context, int32, int32) error                 { return nil }

func (f *fakeIndex) Search(_ context.Context, query string, _ int32, topK int) ([]vector.Candidate, error) {
	f.queries = append(f.queries, query)
	f.topKs = append(f.topKs, topK)
	return f.candidates, f.err
}

var threeCandidates = []vector.Candidate{
	{TaskID: 4, Title: "Walk dog", Score: 0.9},
	{TaskID: 9, Title: "Walk the cat", Score: 0.7},
	{TaskID: 2, Title: "Buy dog food", Score: 0.5},
}

func TestResolve_IDHintSkipsPromptAndSearch(t *testing.T) {
	idx := &fakeIndex{candidates: threeCandidates}
	ch := channeltest.New()
	id := int32(12)

	ref, err := New(idx).Resolve(context.Background(), Hint{ID: &id, Title: "ignored"}, 1, ch, "delete")
	require.NoError(t, err)
	assert.Equal(t, ByID(12), ref)
	assert.Empty(t, idx.queries)
	assert.Empty(t, ch.Prompts())
	assert.Empty(t, ch.Outputs())
}

func TestResolve_NoCandidatesFallsBackToTitle(t *testing.T) {
	idx := &fakeIndex{}
	ch := channeltest.New()

	ref, err := New(idx).Resolve(context.Background(), Hint{Title: "  Pay rent "}, 1, ch, "delete")
	require.NoError(t, err)
	assert.Equal(t, ByTitle("Pay rent"), ref)
	assert.Equal(t, []string{"Pay rent"}, idx.queries)
	assert.Equal(t, []int{DefaultTopK}, idx.topKs)
	assert.Empty(t, ch.Prompts())
}

func TestResolve_SearchErrorFallsBackToTitle(t *testing.T) {
	idx := &fakeIndex{err: errors.New("embedding API down")}
	ref, err := New(idx).Resolve(context.Background(), Hint{Title: "Pay rent"}, 1, channeltest.New(), "delete")
	require.NoError(t, err)
	assert.Equal(t, ByTitle("Pay rent"), ref)
}

func TestResolve_NilIndex(t *testing.T) {
	ref, err := New(nil).Resolve(context.Background(), Hint{Title: "Pay rent"}, 1, channeltest.New(), "delete")
	require.NoError(t, err)
	assert.Equal(t, KindByTitle, ref.Kind)
}

func TestResolve_Selection(t *testing.T) {
	tests := []struct {
		reply   string
		want    Reference
		wantErr error
	}{
		{"1", ByID(4), nil},
		{" 3 ", ByID(2), nil},
		{"0", Reference{}, ErrCancelled},
		{"4", Reference{}, ErrCancelled},
		{"-1", Reference{}, ErrCancelled},
		{"the first one", Reference{}, ErrCancelled},
		{"", Reference{}, ErrCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			idx := &fakeIndex{candidates: threeCandidates}
			ch := channeltest.New(tt.reply)

			ref, err := New(idx).Resolve(context.Background(), Hint{Title: "walk"}, 1, ch, "delete")
			assert.Equal(t, tt.want, ref)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, []string{
				"Did you mean one of these tasks?",
				"1. Walk dog (task_id=4)",
				"2. Walk the cat (task_id=9)",
				"3. Buy dog food (task_id=2)",
			}, ch.Outputs())
			assert.Equal(t, []string{"Enter the task number to delete or 0 to cancel: "}, ch.Prompts())
		})
	}
}

func TestResolve_TruncatesToTopK(t *testing.T) {
	idx := &fakeIndex{candidates: append(threeCandidates, vector.Candidate{TaskID: 30, Title: "Extra"})}
	ch := channeltest.New("0")

	_, err := New(idx).Resolve(context.Background(), Hint{Title: "walk"}, 1, ch, "edit")
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Len(t, ch.Outputs(), 1+DefaultTopK)
}

func TestResolve_AsksForTitleOnce(t *testing.T) {
	idx := &fakeIndex{candidates: threeCandidates[:1]}
	ch := channeltest.New("dog walk", "1")

	ref, err := New(idx).Resolve(context.Background(), Hint{}, 1, ch, "mark as done")
	require.NoError(t, err)
	assert.Equal(t, ByID(4), ref)
	assert.Equal(t, []string{"dog walk"}, idx.queries)
	assert.Equal(t, []string{
		"What task would you like to mark as done? ",
		"Enter the task number to mark as done or 0 to cancel: ",
	}, ch.Prompts())
}

func TestResolve_EmptyFreeTextCancels(t *testing.T) {
	idx := &fakeIndex{candidates: threeCandidates}
	ch := channeltest.New("   ")

	_, err := New(idx).Resolve(context.Background(), Hint{}, 1, ch, "delete")
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Empty(t, idx.queries)
	assert.Equal(t, 0, ch.Remaining())
}

func TestResolve_ChannelErrorPropagates(t *testing.T) {
	_, err := New(&fakeIndex{}).Resolve(context.Background(), Hint{}, 1, channeltest.New(), "delete")
	assert.ErrorIs(t, err, channels.ErrClosed)
	assert.NotErrorIs(t, err, ErrCancelled)
}

func TestReference_String(t *testing.T) {
	assert.Equal(t, "task_id=3", ByID(3).String())
	assert.Equal(t, `title="Pay rent"`, ByTitle("Pay rent").String())
	assert.Equal(t, "unresolved", Reference{}.String())
}
