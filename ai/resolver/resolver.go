// Package resolver turns what a user said about a task into a concrete
// task reference, asking the user to pick when the title is fuzzy.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/hrygo/taskgpt/ai/internal/strutil"
	"github.com/hrygo/taskgpt/ai/vector"
	"github.com/hrygo/taskgpt/plugin/chat_apps/channels"
)

// DefaultTopK is how many candidates the user picks from.
const DefaultTopK = 3

// ErrCancelled means the user declined to pick a task.
var ErrCancelled = errors.New("task selection cancelled")

// Hint is what extraction found: an id, a title, both or neither.
type Hint struct {
	ID    *int32
	Title string
}

// Kind tells how a Reference identifies its task.
type Kind int

const (
	KindByID Kind = iota + 1
	KindByTitle
)

// Reference identifies a task either by id or by exact title.
type Reference struct {
	Kind  Kind
	ID    int32
	Title string
}

// ByID references a task by id.
func ByID(id int32) Reference {
	return Reference{Kind: KindByID, ID: id}
}

// ByTitle references a task by exact title.
func ByTitle(title string) Reference {
	return Reference{Kind: KindByTitle, Title: title}
}

func (r Reference) String() string {
	switch r.Kind {
	case KindByID:
		return "task_id=" + strconv.Itoa(int(r.ID))
	case KindByTitle:
		return fmt.Sprintf("title=%q", r.Title)
	default:
		return "unresolved"
	}
}

// Resolver resolves hints against a user's vector index.
type Resolver struct {
	index vector.Index
	topK  int
}

// New creates a resolver. A nil index means every title falls through to
// exact-title matching.
func New(index vector.Index) *Resolver {
	return &Resolver{index: index, topK: DefaultTopK}
}

// Resolve reduces hint to a Reference. verb names the action in prompts
// ("delete", "mark as done", "edit"). It returns ErrCancelled when the user
// picks nothing; channel errors are returned unchanged.
func (r *Resolver) Resolve(ctx context.Context, hint Hint, userID int32, ch channels.Channel, verb string) (Reference, error) {
	if hint.ID != nil {
		return ByID(*hint.ID), nil
	}

	title := strings.TrimSpace(hint.Title)
	if title == "" {
		reply, err := ch.Input(ctx, fmt.Sprintf("What task would you like to %s? ", verb))
		if err != nil {
			return Reference{}, err
		}
		title = strings.TrimSpace(reply)
		if title == "" {
			return Reference{}, ErrCancelled
		}
	}

	candidates := r.search(ctx, title, userID)
	if len(candidates) == 0 {
		return ByTitle(title), nil
	}
	return r.choose(ctx, candidates, ch, verb)
}

func (r *Resolver) search(ctx context.Context, title string, userID int32) []vector.Candidate {
	if r.index == nil {
		return nil
	}
	candidates, err := r.index.Search(ctx, title, userID, r.topK)
	if err != nil {
		slog.Warn("task search failed, falling back to exact title",
			"user_id", userID,
			"title", strutil.Truncate(title, 50),
			"error", err)
		return nil
	}
	if len(candidates) > r.topK {
		candidates = candidates[:r.topK]
	}
	return candidates
}

func (r *Resolver) choose(ctx context.Context, candidates []vector.Candidate, ch channels.Channel, verb string) (Reference, error) {
	if err := ch.Output(ctx, "Did you mean one of these tasks?"); err != nil {
		return Reference{}, err
	}
	for i, c := range candidates {
		if err := ch.Output(ctx, fmt.Sprintf("%d. %s (task_id=%d)", i+1, c.Title, c.TaskID)); err != nil {
			return Reference{}, err
		}
	}
	reply, err := ch.Input(ctx, fmt.Sprintf("Enter the task number to %s or 0 to cancel: ", verb))
	if err != nil {
		return Reference{}, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(reply))
	if err != nil || n < 1 || n > len(candidates) {
		return Reference{}, ErrCancelled
	}
	return ByID(candidates[n-1].TaskID), nil
}
