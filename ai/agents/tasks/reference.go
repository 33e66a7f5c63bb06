package tasks

import (
	"context"
	"errors"
	"strings"

	"github.com/hrygo/taskgpt/ai/extract"
	"github.com/hrygo/taskgpt/ai/resolver"
	"github.com/hrygo/taskgpt/store"
)

const msgTaskNotFound = "Task not found."

func hintFrom(record extract.Record) resolver.Hint {
	var hint resolver.Hint
	if id, ok := record.Int32(extract.FieldTaskID); ok {
		hint.ID = &id
	}
	hint.Title, _ = record.Get(extract.FieldTaskTitle)
	return hint
}

// findTask loads the task ref points at. Tasks of other users and missing
// tasks both come back as nil.
func findTask(ctx context.Context, deps Deps, ref resolver.Reference) (*store.Task, error) {
	switch ref.Kind {
	case resolver.KindByID:
		task, err := deps.Store.GetTask(ctx, ref.ID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if task.UserID != deps.UserID {
			return nil, nil
		}
		return task, nil
	case resolver.KindByTitle:
		list, err := deps.Store.ListTasks(ctx, deps.UserID, store.TaskFilter{})
		if err != nil {
			return nil, err
		}
		want := strings.TrimSpace(ref.Title)
		for _, task := range list {
			if strings.EqualFold(strings.TrimSpace(task.Title), want) {
				return task, nil
			}
		}
		return nil, nil
	default:
		return nil, nil
	}
}
