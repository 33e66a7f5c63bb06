package tasks

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/taskgpt/ai/extract"
	"github.com/hrygo/taskgpt/ai/mocks"
	"github.com/hrygo/taskgpt/ai/resolver"
	"github.com/hrygo/taskgpt/ai/routing"
	"github.com/hrygo/taskgpt/ai/vector"
	"github.com/hrygo/taskgpt/internal/profile"
	"github.com/hrygo/taskgpt/store"
	"github.com/hrygo/taskgpt/store/db/sqlite"
)

// Substrings that tell the prompt templates apart.
const (
	taskPrompt      = "Task due date"
	referencePrompt = "select one of their tasks"
	editRefPrompt   = "select a task to edit"
	editPrompt      = "helps update tasks"
	rangePrompt     = "due between two dates"
	viewPrompt      = "which kind of tasks"
)

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type upsertCall struct {
	TaskID  int32
	Title   string
	UserID  int32
	DueDate string
}

type recordingIndex struct {
	mu         sync.Mutex
	candidates []vector.Candidate
	upserts    []upsertCall
	removes    []int32
}

func (x *recordingIndex) Upsert(_ context.Context, taskID int32, title string, userID int32, dueDate string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.upserts = append(x.upserts, upsertCall{taskID, title, userID, dueDate})
	return nil
}

func (x *recordingIndex) Search(context.Context, string, int32, int) ([]vector.Candidate, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.candidates, nil
}

func (x *recordingIndex) Remove(_ context.Context, taskID int32, _ int32) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.removes = append(x.removes, taskID)
	return nil
}

type harness struct {
	store *store.Store
	llm   *mocks.MockLLM
	index *recordingIndex
	deps  Deps
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	p := &profile.Profile{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "tasks.db")}
	driver, err := sqlite.NewDB(p)
	require.NoError(t, err)
	s := store.New(driver, p, store.WithClock(func() time.Time { return now }))
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })

	user, err := s.CreateUser(context.Background(), &store.User{Username: "alice", PasswordHash: "x"})
	require.NoError(t, err)

	m := mocks.NewMockLLM()
	idx := &recordingIndex{}
	return &harness{
		store: s,
		llm:   m,
		index: idx,
		deps: Deps{
			UserID:    user.ID,
			Store:     s,
			Index:     idx,
			Extractor: extract.NewExtractor(m),
			Classifier: routing.NewService(routing.Config{
				LLM:   m,
				Sleep: func(context.Context, time.Duration) error { return nil },
			}),
			Resolver: resolver.New(idx),
			Now:      func() time.Time { return now },
		},
	}
}

func (h *harness) addTask(t *testing.T, title, due string, done bool) *store.Task {
	t.Helper()
	ctx := context.Background()
	task, err := h.store.CreateTask(ctx, &store.Task{UserID: h.deps.UserID, Title: title, DueDate: due})
	require.NoError(t, err)
	if done {
		d := true
		task, err = h.store.UpdateTask(ctx, &store.UpdateTask{ID: task.ID, Done: &d})
		require.NoError(t, err)
	}
	return task
}
