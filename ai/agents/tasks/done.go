package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/hrygo/taskgpt/ai/extract"
	"github.com/hrygo/taskgpt/ai/resolver"
	"github.com/hrygo/taskgpt/plugin/chat_apps/channels"
	"github.com/hrygo/taskgpt/store"
)

const msgCancelled = "Canceled or invalid choice."

// MarkDone marks one task as completed.
type MarkDone struct {
	deps Deps
	ref  resolver.Reference
}

// NewMarkDone works out which task to complete.
func NewMarkDone(ctx context.Context, deps Deps, utterance string, ch channels.Channel) (*MarkDone, error) {
	ref, err := resolveReference(ctx, deps, utterance, ch, extract.ReferenceSchema, "mark as done")
	if err != nil || ref == nil {
		return nil, err
	}
	return &MarkDone{deps: deps, ref: *ref}, nil
}

// Handle implements Request.
func (r *MarkDone) Handle(ctx context.Context, ch channels.Channel) (bool, error) {
	task, err := findTask(ctx, r.deps, r.ref)
	if err != nil {
		return false, err
	}
	if task == nil {
		return false, ch.Output(ctx, msgTaskNotFound)
	}
	done := true
	if _, err := r.deps.Store.UpdateTask(ctx, &store.UpdateTask{ID: task.ID, Done: &done}); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, ch.Output(ctx, msgTaskNotFound)
		}
		return false, fmt.Errorf("mark task %d done: %w", task.ID, err)
	}
	return true, ch.Output(ctx, fmt.Sprintf("Task '%s' marked as done!", task.Title))
}

// resolveReference extracts a task hint from utterance and resolves it. It
// returns nil after telling the user the selection was cancelled.
func resolveReference(ctx context.Context, deps Deps, utterance string, ch channels.Channel, schema extract.Schema, verb string) (*resolver.Reference, error) {
	record := deps.Extractor.Extract(ctx, utterance, schema, deps.today())
	ref, err := deps.Resolver.Resolve(ctx, hintFrom(record), deps.UserID, ch, verb)
	if errors.Is(err, resolver.ErrCancelled) {
		return nil, ch.Output(ctx, msgCancelled)
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}
