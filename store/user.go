package store

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// User is an account owning tasks.
type User struct {
	ID       int32
	Username string
	// PasswordHash is opaque to everything but the login flow.
	PasswordHash string

	CreatedTs int64
}

// FindUser is the find condition for users.
type FindUser struct {
	ID       *int32
	Username *string
}

// DeleteUser specifies the user to delete.
type DeleteUser struct {
	ID int32
}

// CreateUser creates a user. A taken username yields ErrDuplicateUsername.
func (s *Store) CreateUser(ctx context.Context, create *User) (*User, error) {
	create.Username = strings.TrimSpace(create.Username)
	if create.Username == "" {
		return nil, errors.Wrap(ErrInvalidArgument, "username is required")
	}
	create.CreatedTs = s.now().Unix()
	user, err := s.driver.CreateUser(ctx, create)
	if err != nil {
		return nil, err
	}
	s.userCache.Set(user.Username, user, 0)
	return user, nil
}

// GetUser returns the first user matching find, or nil when none does.
func (s *Store) GetUser(ctx context.Context, find *FindUser) (*User, error) {
	if find.ID == nil && find.Username != nil {
		if user, ok := s.userCache.Get(*find.Username); ok {
			return user, nil
		}
	}
	list, err := s.driver.ListUsers(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	s.userCache.Set(list[0].Username, list[0], 0)
	return list[0], nil
}

// ListUsers lists the users matching find, oldest first.
func (s *Store) ListUsers(ctx context.Context, find *FindUser) ([]*User, error) {
	return s.driver.ListUsers(ctx, find)
}

// DeleteUser deletes a user together with their tasks and task embeddings.
// A missing user yields ErrNotFound.
func (s *Store) DeleteUser(ctx context.Context, id int32) error {
	user, err := s.GetUser(ctx, &FindUser{ID: &id})
	if err != nil {
		return err
	}
	if user == nil {
		return errors.Wrapf(ErrNotFound, "user %d", id)
	}
	if err := s.driver.DeleteUser(ctx, &DeleteUser{ID: id}); err != nil {
		return err
	}
	s.userCache.Remove(user.Username)
	return nil
}
