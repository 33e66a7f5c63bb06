// Package tasks implements the conversational task operations: each request
// is built by talking to the user, then executed once.
package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/hrygo/taskgpt/ai/extract"
	"github.com/hrygo/taskgpt/ai/resolver"
	"github.com/hrygo/taskgpt/ai/routing"
	"github.com/hrygo/taskgpt/ai/vector"
	"github.com/hrygo/taskgpt/plugin/chat_apps/channels"
	"github.com/hrygo/taskgpt/store"
)

// DefaultMaxAttempts bounds every clarification loop.
const DefaultMaxAttempts = 5

// Request is one task operation ready to run.
type Request interface {
	// Handle performs the operation and reports the outcome to the user.
	// It returns false when the operation was refused (duplicate title,
	// unknown task, nothing to change).
	Handle(ctx context.Context, ch channels.Channel) (bool, error)
}

// TaskStore is the task persistence the requests need; *store.Store satisfies it.
type TaskStore interface {
	ListTasks(ctx context.Context, userID int32, filter store.TaskFilter) ([]*store.Task, error)
	GetTask(ctx context.Context, id int32) (*store.Task, error)
	CreateTask(ctx context.Context, create *store.Task) (*store.Task, error)
	UpdateTask(ctx context.Context, update *store.UpdateTask) (*store.Task, error)
	DeleteTask(ctx context.Context, id int32) error
}

// Classifier picks one option of a closed set.
type Classifier interface {
	Classify(ctx context.Context, utterance string, options routing.OptionSet) routing.Classification
}

// Extractor fills extraction records.
type Extractor interface {
	Extract(ctx context.Context, utterance string, schema extract.Schema, today time.Time) extract.Record
}

// Resolver reduces a task hint to a reference.
type Resolver interface {
	Resolve(ctx context.Context, hint resolver.Hint, userID int32, ch channels.Channel, verb string) (resolver.Reference, error)
}

// Deps is everything a request may use, bound to one session's user.
type Deps struct {
	UserID     int32
	Store      TaskStore
	Index      vector.Index
	Extractor  Extractor
	Classifier Classifier
	Resolver   Resolver

	// Now defaults to time.Now.
	Now func() time.Time
	// MaxAttempts defaults to DefaultMaxAttempts.
	MaxAttempts int
}

func (d Deps) today() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) maxAttempts() int {
	if d.MaxAttempts > 0 {
		return d.MaxAttempts
	}
	return DefaultMaxAttempts
}

// upsertIndex keeps the index in step with the store. Index failures only
// degrade search, so they are logged.
func (d Deps) upsertIndex(ctx context.Context, task *store.Task) {
	if d.Index == nil {
		return
	}
	if err := d.Index.Upsert(ctx, task.ID, task.Title, d.UserID, task.DueDate); err != nil {
		slog.Warn("failed to index task", "task_id", task.ID, "user_id", d.UserID, "error", err)
	}
}

func (d Deps) removeIndex(ctx context.Context, taskID int32) {
	if d.Index == nil {
		return
	}
	if err := d.Index.Remove(ctx, taskID, d.UserID); err != nil {
		slog.Warn("failed to unindex task", "task_id", taskID, "user_id", d.UserID, "error", err)
	}
}
