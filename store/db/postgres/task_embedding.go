package postgres

import (
	"context"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/hrygo/taskgpt/store"
)

func (d *DB) UpsertTaskEmbedding(ctx context.Context, embedding *store.TaskEmbedding) (*store.TaskEmbedding, error) {
	stmt := `
		INSERT INTO task_embedding (task_id, user_id, title, due_date, model, embedding, created_ts, updated_ts)
		VALUES (` + placeholders(8) + `)
		ON CONFLICT (task_id, model)
		DO UPDATE SET
			user_id = EXCLUDED.user_id,
			title = EXCLUDED.title,
			due_date = EXCLUDED.due_date,
			embedding = EXCLUDED.embedding,
			updated_ts = EXCLUDED.updated_ts
		RETURNING created_ts, updated_ts
	`
	err := d.db.QueryRowContext(ctx, stmt,
		embedding.TaskID,
		embedding.UserID,
		embedding.Title,
		embedding.DueDate,
		embedding.Model,
		pgvector.NewVector(embedding.Embedding),
		embedding.CreatedTs,
		embedding.UpdatedTs,
	).Scan(&embedding.CreatedTs, &embedding.UpdatedTs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert task embedding")
	}
	return embedding, nil
}

func (d *DB) DeleteTaskEmbedding(ctx context.Context, delete *store.DeleteTaskEmbedding) error {
	stmt := `DELETE FROM task_embedding WHERE task_id = $1 AND user_id = $2`
	if _, err := d.db.ExecContext(ctx, stmt, delete.TaskID, delete.UserID); err != nil {
		return errors.Wrap(err, "failed to delete task embedding")
	}
	return nil
}

// TaskVectorSearch orders by pgvector cosine distance; score is 1 - distance.
func (d *DB) TaskVectorSearch(ctx context.Context, opts *store.TaskVectorSearchOptions) ([]*store.TaskWithScore, error) {
	args := []any{pgvector.NewVector(opts.Vector), opts.UserID}
	query := `
		SELECT task_id, title, due_date, 1 - (embedding <=> $1) AS score
		FROM task_embedding
		WHERE user_id = $2`
	if opts.Model != "" {
		args = append(args, opts.Model)
		query += ` AND model = ` + placeholder(len(args))
	}
	args = append(args, opts.Limit)
	query += `
		ORDER BY embedding <=> $1
		LIMIT ` + placeholder(len(args))

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search task embeddings")
	}
	defer rows.Close()

	results := []*store.TaskWithScore{}
	for rows.Next() {
		var hit store.TaskWithScore
		if err := rows.Scan(&hit.TaskID, &hit.Title, &hit.DueDate, &hit.Score); err != nil {
			return nil, errors.Wrap(err, "failed to scan task embedding")
		}
		results = append(results, &hit)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
