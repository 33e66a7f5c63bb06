package sqlite

import (
	"context"
	"encoding/binary"
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/hrygo/taskgpt/store"
)

// float32ArrayToBLOB encodes a vector as little-endian float32s.
func float32ArrayToBLOB(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(v))
	}
	return buf
}

// blobToFloat32Array is the inverse of float32ArrayToBLOB.
func blobToFloat32Array(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, errors.Errorf("invalid BLOB length: %d", len(blob))
	}
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4 : i*4+4]))
	}
	return vec, nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

func (d *DB) UpsertTaskEmbedding(ctx context.Context, embedding *store.TaskEmbedding) (*store.TaskEmbedding, error) {
	stmt := `INSERT INTO task_embedding (task_id, user_id, title, due_date, model, embedding, created_ts, updated_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (task_id, model) DO UPDATE SET
			user_id = excluded.user_id,
			title = excluded.title,
			due_date = excluded.due_date,
			embedding = excluded.embedding,
			updated_ts = excluded.updated_ts
		RETURNING created_ts, updated_ts`
	err := d.db.QueryRowContext(ctx, stmt,
		embedding.TaskID,
		embedding.UserID,
		embedding.Title,
		embedding.DueDate,
		embedding.Model,
		float32ArrayToBLOB(embedding.Embedding),
		embedding.CreatedTs,
		embedding.UpdatedTs,
	).Scan(&embedding.CreatedTs, &embedding.UpdatedTs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert task embedding")
	}
	return embedding, nil
}

func (d *DB) DeleteTaskEmbedding(ctx context.Context, delete *store.DeleteTaskEmbedding) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM task_embedding WHERE task_id = ? AND user_id = ?`, delete.TaskID, delete.UserID); err != nil {
		return errors.Wrap(err, "failed to delete task embedding")
	}
	return nil
}

// TaskVectorSearch ranks the user's embeddings by cosine similarity in Go.
// A user's task list is small enough that a full scan stays cheap.
func (d *DB) TaskVectorSearch(ctx context.Context, opts *store.TaskVectorSearchOptions) ([]*store.TaskWithScore, error) {
	query := `SELECT task_id, title, due_date, embedding FROM task_embedding WHERE user_id = ?`
	args := []any{opts.UserID}
	if opts.Model != "" {
		query += ` AND model = ?`
		args = append(args, opts.Model)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query task embeddings")
	}
	defer rows.Close()

	results := []*store.TaskWithScore{}
	for rows.Next() {
		var hit store.TaskWithScore
		var blob []byte
		if err := rows.Scan(&hit.TaskID, &hit.Title, &hit.DueDate, &blob); err != nil {
			return nil, errors.Wrap(err, "failed to scan task embedding")
		}
		vec, err := blobToFloat32Array(blob)
		if err != nil {
			return nil, err
		}
		hit.Score = cosineSimilarity(opts.Vector, vec)
		results = append(results, &hit)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}
