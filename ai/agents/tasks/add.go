package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hrygo/taskgpt/ai/extract"
	"github.com/hrygo/taskgpt/ai/internal/strutil"
	"github.com/hrygo/taskgpt/plugin/chat_apps/channels"
	"github.com/hrygo/taskgpt/store"
)

const (
	promptTitleAndDate = "Great! enter your task title and due date : "
	promptDueDate      = "Enter due date or include it in a full sentence (e.g., 'Walk dog next week'): "
	msgDuplicateTitle  = "A task with this title already exists."
	msgInvalidDueDate  = "Invalid date format. Please use YYYY-MM-DD. Task not added."
	msgAddGaveUp       = "I still couldn't work out the task. Let's start over."
)

// AddTask creates one task.
type AddTask struct {
	deps    Deps
	title   string
	dueDate string
}

// NewAddTask extracts a title and a due date from utterance, asking for
// whichever is missing. It returns nil when the user never supplies them or
// the date is not YYYY-MM-DD.
func NewAddTask(ctx context.Context, deps Deps, utterance string, ch channels.Channel) (*AddTask, error) {
	record := deps.Extractor.Extract(ctx, utterance, extract.TaskSchema, deps.today())
	title, hasTitle := record.Get(extract.FieldName)
	dueDate, hasDate := record.Get(extract.FieldDate)
	slog.Debug("add task extracted", "title", title, "date", dueDate, "input", strutil.Truncate(utterance, 80))

	for attempt := 0; !hasTitle; attempt++ {
		if attempt == deps.maxAttempts() {
			return nil, ch.Output(ctx, msgAddGaveUp)
		}
		reply, err := ch.Input(ctx, promptTitleAndDate)
		if err != nil {
			return nil, err
		}
		record = deps.Extractor.Extract(ctx, reply, extract.TaskSchema, deps.today())
		title, hasTitle = record.Get(extract.FieldName)
		dueDate, hasDate = record.Get(extract.FieldDate)
	}

	for attempt := 0; !hasDate; attempt++ {
		if attempt == deps.maxAttempts() {
			return nil, ch.Output(ctx, msgAddGaveUp)
		}
		reply, err := ch.Input(ctx, promptDueDate)
		if err != nil {
			return nil, err
		}
		record = deps.Extractor.Extract(ctx, reply, extract.TaskSchema, deps.today())
		dueDate, hasDate = record.Get(extract.FieldDate)
	}

	if !store.ValidDate(dueDate) {
		slog.Info("rejecting task with malformed due date", "due_date", dueDate)
		return nil, ch.Output(ctx, msgInvalidDueDate)
	}
	return &AddTask{deps: deps, title: title, dueDate: dueDate}, nil
}

// Handle implements Request.
func (r *AddTask) Handle(ctx context.Context, ch channels.Channel) (bool, error) {
	task, err := r.deps.Store.CreateTask(ctx, &store.Task{
		UserID:  r.deps.UserID,
		Title:   r.title,
		DueDate: r.dueDate,
	})
	if errors.Is(err, store.ErrDuplicateTitle) {
		return false, ch.Output(ctx, msgDuplicateTitle)
	}
	if err != nil {
		return false, fmt.Errorf("create task: %w", err)
	}
	r.deps.upsertIndex(ctx, task)
	return true, ch.Output(ctx, fmt.Sprintf("Task '%s' added with due date %s!", task.Title, task.DueDate))
}
