// Package vector provides semantic search over a user's task titles.
package vector

import "context"

// Index is the per-user semantic index of task titles.
type Index interface {
	// Upsert stores or replaces the entry for taskID.
	Upsert(ctx context.Context, taskID int32, title string, userID int32, dueDate string) error

	// Search returns up to topK of the user's tasks, most similar first.
	Search(ctx context.Context, query string, userID int32, topK int) ([]Candidate, error)

	// Remove drops the entry for taskID. Removing a missing entry is not an error.
	Remove(ctx context.Context, taskID int32, userID int32) error
}

// Candidate is one semantic search hit.
type Candidate struct {
	TaskID  int32   `json:"task_id"`
	Title   string  `json:"title"`
	DueDate string  `json:"due_date,omitempty"`
	Score   float32 `json:"score"`
}
