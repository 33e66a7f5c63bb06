package tasks

import (
	"context"

	"github.com/hrygo/taskgpt/ai/routing"
	"github.com/hrygo/taskgpt/plugin/chat_apps/channels"
)

// Dispatcher builds the request for an intent.
type Dispatcher struct {
	deps Deps
}

// NewDispatcher creates a dispatcher bound to one session's deps.
func NewDispatcher(deps Deps) *Dispatcher {
	return &Dispatcher{deps: deps}
}

// Dispatch builds the request for intent. It returns a nil Request when the
// intent is unknown or the user abandoned the request.
func (d *Dispatcher) Dispatch(ctx context.Context, intent routing.Intent, utterance string, ch channels.Channel) (Request, error) {
	switch intent {
	case routing.IntentViewTasks:
		r, err := NewViewTasks(ctx, d.deps, utterance, ch)
		return asRequest(r, err)
	case routing.IntentAddTask:
		r, err := NewAddTask(ctx, d.deps, utterance, ch)
		return asRequest(r, err)
	case routing.IntentMarkDone:
		r, err := NewMarkDone(ctx, d.deps, utterance, ch)
		return asRequest(r, err)
	case routing.IntentDeleteTask:
		r, err := NewDeleteTask(ctx, d.deps, utterance, ch)
		return asRequest(r, err)
	case routing.IntentEditTask:
		r, err := NewEditTask(ctx, d.deps, utterance, ch)
		return asRequest(r, err)
	default:
		return nil, nil
	}
}

// asRequest keeps a nil *T from becoming a non-nil Request.
func asRequest[T any, P interface {
	*T
	Request
}](r P, err error) (Request, error) {
	if err != nil || r == nil {
		return nil, err
	}
	return r, nil
}
