package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	Migrate(ctx context.Context) error

	// Task model related methods.
	CreateTask(ctx context.Context, create *Task) (*Task, error)
	ListTasks(ctx context.Context, find *FindTask) ([]*Task, error)
	UpdateTask(ctx context.Context, update *UpdateTask, updatedTs int64) (*Task, error)
	DeleteTask(ctx context.Context, delete *DeleteTask) error

	// User model related methods.
	CreateUser(ctx context.Context, create *User) (*User, error)
	ListUsers(ctx context.Context, find *FindUser) ([]*User, error)
	DeleteUser(ctx context.Context, delete *DeleteUser) error

	// TaskEmbedding model related methods.
	UpsertTaskEmbedding(ctx context.Context, embedding *TaskEmbedding) (*TaskEmbedding, error)
	DeleteTaskEmbedding(ctx context.Context, delete *DeleteTaskEmbedding) error
	TaskVectorSearch(ctx context.Context, opts *TaskVectorSearchOptions) ([]*TaskWithScore, error)
}
