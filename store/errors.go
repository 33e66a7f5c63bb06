package store

import "github.com/pkg/errors"

var (
	// ErrNotFound is returned when a looked-up object does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateTitle is returned when a task title is already taken.
	ErrDuplicateTitle = errors.New("a task with this title already exists")
	// ErrDuplicateUsername is returned when a username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrInvalidArgument is returned for malformed input.
	ErrInvalidArgument = errors.New("invalid argument")
)
