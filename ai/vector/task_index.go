package vector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hrygo/taskgpt/ai/core/embedding"
	"github.com/hrygo/taskgpt/store"
)

// EmbeddingStore is the part of store.Store the index persists into.
type EmbeddingStore interface {
	UpsertTaskEmbedding(ctx context.Context, embedding *store.TaskEmbedding) (*store.TaskEmbedding, error)
	DeleteTaskEmbedding(ctx context.Context, delete *store.DeleteTaskEmbedding) error
	TaskVectorSearch(ctx context.Context, opts *store.TaskVectorSearchOptions) ([]*store.TaskWithScore, error)
}

// TaskIndex embeds titles with an Embedder and keeps the vectors in the store.
// With a nil Embedder it indexes nothing and every search comes back empty,
// which sends callers down their exact-title path.
type TaskIndex struct {
	store    EmbeddingStore
	embedder embedding.Embedder
}

// NewTaskIndex creates a TaskIndex.
func NewTaskIndex(store EmbeddingStore, embedder embedding.Embedder) *TaskIndex {
	return &TaskIndex{store: store, embedder: embedder}
}

func (x *TaskIndex) Upsert(ctx context.Context, taskID int32, title string, userID int32, dueDate string) error {
	if x.embedder == nil {
		return nil
	}
	vec, err := x.embedder.Embed(ctx, title)
	if err != nil {
		return fmt.Errorf("embed task %d: %w", taskID, err)
	}
	_, err = x.store.UpsertTaskEmbedding(ctx, &store.TaskEmbedding{
		TaskID:    taskID,
		UserID:    userID,
		Title:     title,
		DueDate:   dueDate,
		Model:     x.embedder.Model(),
		Embedding: vec,
	})
	if err != nil {
		return fmt.Errorf("store embedding of task %d: %w", taskID, err)
	}
	return nil
}

func (x *TaskIndex) Search(ctx context.Context, query string, userID int32, topK int) ([]Candidate, error) {
	if x.embedder == nil {
		return nil, nil
	}
	vec, err := x.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := x.store.TaskVectorSearch(ctx, &store.TaskVectorSearchOptions{
		Vector: vec,
		Model:  x.embedder.Model(),
		Limit:  topK,
		UserID: userID,
	})
	if err != nil {
		return nil, fmt.Errorf("search task embeddings: %w", err)
	}

	candidates := make([]Candidate, 0, len(hits))
	for _, h := range hits {
		candidates = append(candidates, Candidate{TaskID: h.TaskID, Title: h.Title, DueDate: h.DueDate, Score: h.Score})
	}
	slog.Debug("vector search", "user_id", userID, "candidates", len(candidates))
	return candidates, nil
}

func (x *TaskIndex) Remove(ctx context.Context, taskID int32, userID int32) error {
	if err := x.store.DeleteTaskEmbedding(ctx, &store.DeleteTaskEmbedding{TaskID: taskID, UserID: userID}); err != nil {
		return fmt.Errorf("remove embedding of task %d: %w", taskID, err)
	}
	return nil
}
