package sqlite

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/taskgpt/store"
)

func (d *DB) CreateTask(ctx context.Context, create *store.Task) (*store.Task, error) {
	stmt := `INSERT INTO task (user_id, title, due_date, done, created_ts, updated_ts)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`
	err := d.db.QueryRowContext(ctx, stmt,
		create.UserID,
		create.Title,
		create.DueDate,
		create.Done,
		create.CreatedTs,
		create.UpdatedTs,
	).Scan(&create.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errors.Wrapf(store.ErrDuplicateTitle, "title %q", create.Title)
		}
		return nil, errors.Wrap(err, "failed to create task")
	}
	return create, nil
}

func (d *DB) ListTasks(ctx context.Context, find *store.FindTask) ([]*store.Task, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.UserID; v != nil {
		where, args = append(where, "user_id = ?"), append(args, *v)
	}
	if v := find.Title; v != nil {
		where, args = append(where, "title = ?"), append(args, *v)
	}
	if v := find.Done; v != nil {
		where, args = append(where, "done = ?"), append(args, *v)
	}
	if find.Overdue {
		where, args = append(where, "done = 0 AND due_date != '' AND due_date < ?"), append(args, find.Today)
	}
	if find.Upcoming {
		where, args = append(where, "done = 0 AND due_date != '' AND due_date > ?"), append(args, find.Today)
	}
	if v := find.Date; v != nil {
		where, args = append(where, "due_date = ?"), append(args, *v)
	}
	if v := find.StartDate; v != nil {
		where, args = append(where, "due_date != '' AND due_date >= ?"), append(args, *v)
	}
	if v := find.EndDate; v != nil {
		where, args = append(where, "due_date != '' AND due_date <= ?"), append(args, *v)
	}

	query := `SELECT id, user_id, title, due_date, done, created_ts, updated_ts
		FROM task
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY id DESC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tasks")
	}
	defer rows.Close()

	list := []*store.Task{}
	for rows.Next() {
		var task store.Task
		if err := rows.Scan(
			&task.ID,
			&task.UserID,
			&task.Title,
			&task.DueDate,
			&task.Done,
			&task.CreatedTs,
			&task.UpdatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan task")
		}
		list = append(list, &task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) UpdateTask(ctx context.Context, update *store.UpdateTask, updatedTs int64) (*store.Task, error) {
	set, args := []string{"updated_ts = ?"}, []any{updatedTs}
	if v := update.Title; v != nil {
		set, args = append(set, "title = ?"), append(args, *v)
	}
	if v := update.DueDate; v != nil {
		set, args = append(set, "due_date = ?"), append(args, *v)
	}
	if v := update.Done; v != nil {
		set, args = append(set, "done = ?"), append(args, *v)
	}
	args = append(args, update.ID)

	stmt := `UPDATE task SET ` + strings.Join(set, ", ") + ` WHERE id = ?`
	result, err := d.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errors.Wrapf(store.ErrDuplicateTitle, "task %d", update.ID)
		}
		return nil, errors.Wrap(err, "failed to update task")
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, errors.Wrapf(store.ErrNotFound, "task %d", update.ID)
	}

	list, err := d.ListTasks(ctx, &store.FindTask{ID: &update.ID})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, errors.Wrapf(store.ErrNotFound, "task %d", update.ID)
	}
	return list[0], nil
}

func (d *DB) DeleteTask(ctx context.Context, delete *store.DeleteTask) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM task WHERE id = ?`, delete.ID)
	if err != nil {
		return errors.Wrap(err, "failed to delete task")
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errors.Wrapf(store.ErrNotFound, "task %d", delete.ID)
	}
	return nil
}
