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

// DeleteTask removes one task from the store and the index.
type DeleteTask struct {
	deps Deps
	ref  resolver.Reference
}

// NewDeleteTask works out which task to delete.
func NewDeleteTask(ctx context.Context, deps Deps, utterance string, ch channels.Channel) (*DeleteTask, error) {
	ref, err := resolveReference(ctx, deps, utterance, ch, extract.ReferenceSchema, "delete")
	if err != nil || ref == nil {
		return nil, err
	}
	return &DeleteTask{deps: deps, ref: *ref}, nil
}

// Handle implements Request.
func (r *DeleteTask) Handle(ctx context.Context, ch channels.Channel) (bool, error) {
	task, err := findTask(ctx, r.deps, r.ref)
	if err != nil {
		return false, err
	}
	if task == nil {
		return false, ch.Output(ctx, msgTaskNotFound)
	}
	if err := r.deps.Store.DeleteTask(ctx, task.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, ch.Output(ctx, msgTaskNotFound)
		}
		return false, fmt.Errorf("delete task %d: %w", task.ID, err)
	}
	r.deps.removeIndex(ctx, task.ID)
	return true, ch.Output(ctx, fmt.Sprintf("Task '%s' deleted!", task.Title))
}
