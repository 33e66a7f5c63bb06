package postgres

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/taskgpt/store"
)

func (d *DB) CreateUser(ctx context.Context, create *store.User) (*store.User, error) {
	stmt := `INSERT INTO "user" (username, password_hash, created_ts) VALUES (` + placeholders(3) + `) RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, create.Username, create.PasswordHash, create.CreatedTs).Scan(&create.ID); err != nil {
		if isUniqueViolation(err) {
			return nil, errors.Wrapf(store.ErrDuplicateUsername, "username %q", create.Username)
		}
		return nil, errors.Wrap(err, "failed to create user")
	}
	return create, nil
}

func (d *DB) ListUsers(ctx context.Context, find *store.FindUser) ([]*store.User, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Username; v != nil {
		where, args = append(where, "username = "+placeholder(len(args)+1)), append(args, *v)
	}

	rows, err := d.db.QueryContext(ctx, `SELECT id, username, password_hash, created_ts
		FROM "user"
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY id ASC`, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	defer rows.Close()

	list := []*store.User{}
	for rows.Next() {
		var user store.User
		if err := rows.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan user")
		}
		list = append(list, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) DeleteUser(ctx context.Context, delete *store.DeleteUser) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		`DELETE FROM task_embedding WHERE user_id = $1`,
		`DELETE FROM task WHERE user_id = $1`,
		`DELETE FROM "user" WHERE id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, delete.ID); err != nil {
			return errors.Wrapf(err, "failed to delete user %d", delete.ID)
		}
	}
	return errors.Wrap(tx.Commit(), "failed to commit user deletion")
}
