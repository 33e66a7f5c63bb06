package vector_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/taskgpt/ai/vector"
	"github.com/hrygo/taskgpt/internal/profile"
	"github.com/hrygo/taskgpt/store"
	"github.com/hrygo/taskgpt/store/db/sqlite"
)

// wordEmbedder maps each known keyword to one axis.
type wordEmbedder struct{}

var axes = []string{"milk", "dog", "report", "bread"}

func (wordEmbedder) Model() string { return "words" }

func (wordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, len(axes))
	for i, w := range axes {
		if strings.Contains(strings.ToLower(text), w) {
			vec[i] = 1
		}
	}
	return vec, nil
}

func newStore(t *testing.T) *store.Store {
	t.Helper()
	p := &profile.Profile{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "vec.db")}
	driver, err := sqlite.NewDB(p)
	require.NoError(t, err)
	s := store.New(driver, p)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestTaskIndex(t *testing.T) {
	ctx := context.Background()
	idx := vector.NewTaskIndex(newStore(t), wordEmbedder{})

	require.NoError(t, idx.Upsert(ctx, 1, "Buy milk", 7, "2026-03-12"))
	require.NoError(t, idx.Upsert(ctx, 2, "Walk the dog", 7, ""))
	require.NoError(t, idx.Upsert(ctx, 3, "Buy milk and bread", 7, ""))
	require.NoError(t, idx.Upsert(ctx, 4, "Buy milk", 8, ""))

	got, err := idx.Search(ctx, "milk", 7, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int32(1), got[0].TaskID)
	assert.Equal(t, "2026-03-12", got[0].DueDate)
	assert.Equal(t, int32(3), got[1].TaskID)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}

	require.NoError(t, idx.Remove(ctx, 1, 7))
	require.NoError(t, idx.Remove(ctx, 1, 7), "removing twice is fine")

	got, err = idx.Search(ctx, "milk", 7, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int32(3), got[0].TaskID)
}

func TestTaskIndex_NoEmbedder(t *testing.T) {
	ctx := context.Background()
	idx := vector.NewTaskIndex(newStore(t), nil)

	require.NoError(t, idx.Upsert(ctx, 1, "Buy milk", 7, ""))
	got, err := idx.Search(ctx, "milk", 7, 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}
