package store

import (
	"context"

	"github.com/pkg/errors"
)

// TaskEmbedding is the vector embedding of a task title.
type TaskEmbedding struct {
	TaskID    int32
	UserID    int32
	Title     string
	DueDate   string
	Model     string
	Embedding []float32
	CreatedTs int64
	UpdatedTs int64
}

// DeleteTaskEmbedding specifies the embedding to delete.
type DeleteTaskEmbedding struct {
	TaskID int32
	UserID int32
}

// TaskWithScore is a vector search hit.
type TaskWithScore struct {
	TaskID  int32
	Title   string
	DueDate string
	Score   float32 // Cosine similarity, higher is more similar
}

// TaskVectorSearchOptions represents the options for task vector search.
type TaskVectorSearchOptions struct {
	Vector []float32
	Model  string
	Limit  int
	UserID int32
}

// Validate validates the TaskVectorSearchOptions.
func (o *TaskVectorSearchOptions) Validate() error {
	if o.UserID <= 0 {
		return errors.Errorf("invalid UserID: %d", o.UserID)
	}
	if len(o.Vector) == 0 {
		return errors.Errorf("vector cannot be empty")
	}
	if o.Limit < 0 {
		return errors.Errorf("limit cannot be negative: %d", o.Limit)
	}
	if o.Limit == 0 {
		o.Limit = 10
	}
	if o.Limit > 1000 {
		return errors.Errorf("limit too large (max 1000): %d", o.Limit)
	}
	return nil
}

// UpsertTaskEmbedding inserts or replaces the embedding of a task.
func (s *Store) UpsertTaskEmbedding(ctx context.Context, embedding *TaskEmbedding) (*TaskEmbedding, error) {
	if len(embedding.Embedding) == 0 {
		return nil, errors.New("embedding cannot be empty")
	}
	now := s.now().Unix()
	if embedding.CreatedTs == 0 {
		embedding.CreatedTs = now
	}
	embedding.UpdatedTs = now
	return s.driver.UpsertTaskEmbedding(ctx, embedding)
}

// DeleteTaskEmbedding removes the embedding of a task. Missing rows are not an error.
func (s *Store) DeleteTaskEmbedding(ctx context.Context, delete *DeleteTaskEmbedding) error {
	return s.driver.DeleteTaskEmbedding(ctx, delete)
}

// TaskVectorSearch returns the tasks of a user nearest to the query vector.
func (s *Store) TaskVectorSearch(ctx context.Context, opts *TaskVectorSearchOptions) ([]*TaskWithScore, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return s.driver.TaskVectorSearch(ctx, opts)
}
