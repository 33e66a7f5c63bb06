package tasks

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/hrygo/taskgpt/ai/extract"
	"github.com/hrygo/taskgpt/ai/resolver"
	"github.com/hrygo/taskgpt/plugin/chat_apps/channels"
	"github.com/hrygo/taskgpt/store"
)

const (
	msgEditCancelled  = "Got it, canceling the edit for now."
	msgEditManual     = "I didn't quite catch that. Let's try again manually:"
	promptNewTitle    = "New title? (or leave blank): "
	promptNewDueDate  = "New due date? (YYYY-MM-DD or leave blank): "
	msgNothingToApply = "Hmm, I didn't get any changes to apply. Want to try again?"
)

// EditConfirmations are the replies after a successful edit; %s is the title.
var EditConfirmations = []string{
	"All done! ✨ Your task is updated.",
	"✅ Changes saved! You're all set.",
	"Task updated successfully! Want to do anything else?",
	"Great, I've updated '%s'. Let me know what's next!",
}

// EditTask changes the title and/or due date of one task.
type EditTask struct {
	deps    Deps
	task    *store.Task
	title   *string
	dueDate *string
}

// NewEditTask works out which task to edit, then what to change. When the
// change cannot be extracted it asks for each field directly.
func NewEditTask(ctx context.Context, deps Deps, utterance string, ch channels.Channel) (*EditTask, error) {
	record := deps.Extractor.Extract(ctx, utterance, extract.EditReferenceSchema, deps.today())
	ref, err := deps.Resolver.Resolve(ctx, hintFrom(record), deps.UserID, ch, "edit")
	if errors.Is(err, resolver.ErrCancelled) {
		return nil, ch.Output(ctx, msgEditCancelled)
	}
	if err != nil {
		return nil, err
	}

	task, err := findTask(ctx, deps, ref)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ch.Output(ctx, msgTaskNotFound)
	}

	if err := ch.Output(ctx, fmt.Sprintf("Cool, we're editing: '%s' (ID: %d)", task.Title, task.ID)); err != nil {
		return nil, err
	}
	reply, err := ch.Input(ctx, fmt.Sprintf("What would you like to change about '%s'? ", task.Title))
	if err != nil {
		return nil, err
	}

	req := &EditTask{deps: deps, task: task}
	fields := deps.Extractor.Extract(ctx, reply, extract.EditFieldsSchema, deps.today())
	if v, ok := fields.Get(extract.FieldTitle); ok {
		req.title = &v
	}
	if v, ok := fields.Get(extract.FieldDueDate); ok {
		req.dueDate = &v
	}
	if req.title != nil || req.dueDate != nil {
		return req, nil
	}

	if err := ch.Output(ctx, msgEditManual); err != nil {
		return nil, err
	}
	title, err := ch.Input(ctx, promptNewTitle)
	if err != nil {
		return nil, err
	}
	dueDate, err := ch.Input(ctx, promptNewDueDate)
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(title); v != "" {
		req.title = &v
	}
	if v := strings.TrimSpace(dueDate); v != "" {
		req.dueDate = &v
	}
	return req, nil
}

// Handle implements Request. Both fields are applied in one update.
func (r *EditTask) Handle(ctx context.Context, ch channels.Channel) (bool, error) {
	if r.title == nil && r.dueDate == nil {
		return false, ch.Output(ctx, msgNothingToApply)
	}
	if r.dueDate != nil && !store.ValidDate(*r.dueDate) {
		return false, ch.Output(ctx, msgBadDateFormat)
	}

	updated, err := r.deps.Store.UpdateTask(ctx, &store.UpdateTask{
		ID:      r.task.ID,
		Title:   r.title,
		DueDate: r.dueDate,
	})
	switch {
	case errors.Is(err, store.ErrDuplicateTitle):
		return false, ch.Output(ctx, msgDuplicateTitle)
	case errors.Is(err, store.ErrNotFound):
		return false, ch.Output(ctx, msgTaskNotFound)
	case err != nil:
		return false, fmt.Errorf("update task %d: %w", r.task.ID, err)
	}

	r.deps.upsertIndex(ctx, updated)
	msg := EditConfirmations[rand.IntN(len(EditConfirmations))]
	if strings.Contains(msg, "%s") {
		msg = fmt.Sprintf(msg, updated.Title)
	}
	return true, ch.Output(ctx, msg)
}
