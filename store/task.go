package store

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DateLayout is the only accepted due date format.
const DateLayout = "2006-01-02"

// Task is a single to-do item owned by a user.
type Task struct {
	ID     int32
	UserID int32

	Title string
	// DueDate is a YYYY-MM-DD calendar date, empty when the task has none.
	DueDate string
	Done    bool

	CreatedTs int64
	UpdatedTs int64
}

// TaskFilter narrows a task listing. Zero value lists everything.
type TaskFilter struct {
	Done      *bool
	Overdue   bool
	Upcoming  bool
	Date      string
	StartDate string
	EndDate   string
}

// FindTask is the driver-level find condition for tasks.
type FindTask struct {
	ID     *int32
	UserID *int32
	Title  *string

	Done      *bool
	Overdue   bool
	Upcoming  bool
	Date      *string
	StartDate *string
	EndDate   *string

	// Today anchors the overdue/upcoming filters.
	Today string
}

// UpdateTask carries a partial task update. Nil fields are left untouched.
type UpdateTask struct {
	ID      int32
	Title   *string
	DueDate *string
	Done    *bool
}

// DeleteTask specifies the task to delete.
type DeleteTask struct {
	ID int32
}

// ValidDate reports whether s is a YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ListTasks lists the tasks of a user matching filter, newest first.
func (s *Store) ListTasks(ctx context.Context, userID int32, filter TaskFilter) ([]*Task, error) {
	find := &FindTask{
		UserID:   &userID,
		Done:     filter.Done,
		Overdue:  filter.Overdue,
		Upcoming: filter.Upcoming,
		Today:    s.now().Format(DateLayout),
	}
	for _, d := range []struct {
		value string
		dst   **string
	}{
		{filter.Date, &find.Date},
		{filter.StartDate, &find.StartDate},
		{filter.EndDate, &find.EndDate},
	} {
		if d.value == "" {
			continue
		}
		if !ValidDate(d.value) {
			return nil, errors.Wrapf(ErrInvalidArgument, "invalid date filter %q", d.value)
		}
		v := d.value
		*d.dst = &v
	}
	return s.driver.ListTasks(ctx, find)
}

// GetTask returns the task with the given id or ErrNotFound.
func (s *Store) GetTask(ctx context.Context, id int32) (*Task, error) {
	list, err := s.driver.ListTasks(ctx, &FindTask{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "task %d", id)
	}
	return list[0], nil
}

// CreateTask creates a task. A title already used by another task yields ErrDuplicateTitle.
func (s *Store) CreateTask(ctx context.Context, create *Task) (*Task, error) {
	create.Title = strings.TrimSpace(create.Title)
	if create.Title == "" {
		return nil, errors.Wrap(ErrInvalidArgument, "title is required")
	}
	if create.UserID <= 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "invalid user id %d", create.UserID)
	}
	if create.DueDate != "" && !ValidDate(create.DueDate) {
		return nil, errors.Wrapf(ErrInvalidArgument, "invalid due date %q", create.DueDate)
	}
	now := s.now().Unix()
	create.CreatedTs, create.UpdatedTs = now, now
	return s.driver.CreateTask(ctx, create)
}

// UpdateTask applies a partial update and returns the updated task.
func (s *Store) UpdateTask(ctx context.Context, update *UpdateTask) (*Task, error) {
	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, errors.Wrap(ErrInvalidArgument, "title cannot be empty")
		}
		update.Title = &title
	}
	if update.DueDate != nil && *update.DueDate != "" && !ValidDate(*update.DueDate) {
		return nil, errors.Wrapf(ErrInvalidArgument, "invalid due date %q", *update.DueDate)
	}
	return s.driver.UpdateTask(ctx, update, s.now().Unix())
}

// DeleteTask deletes a task by id.
func (s *Store) DeleteTask(ctx context.Context, id int32) error {
	return s.driver.DeleteTask(ctx, &DeleteTask{ID: id})
}
