package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/taskgpt/store"
)

type taskResponse struct {
	ID      int32   `json:"id"`
	Title   string  `json:"title"`
	DueDate *string `json:"due_date"`
	Done    bool    `json:"done"`
	UserID  int32   `json:"user_id"`
}

type createTaskRequest struct {
	Title   string `json:"title"`
	DueDate string `json:"due_date"`
	Done    bool   `json:"done"`
	UserID  int32  `json:"user_id"`
}

type updateTaskRequest struct {
	Title   *string `json:"title"`
	DueDate *string `json:"due_date"`
	Done    *bool   `json:"done"`
}

func convertTaskFromStore(task *store.Task) *taskResponse {
	resp := &taskResponse{
		ID:     task.ID,
		Title:  task.Title,
		Done:   task.Done,
		UserID: task.UserID,
	}
	if task.DueDate != "" {
		due := task.DueDate
		resp.DueDate = &due
	}
	return resp
}

func (s *Server) listTasks(c echo.Context) error {
	var (
		userID int32
		done   bool
		filter store.TaskFilter
	)
	err := echo.QueryParamsBinder(c).
		MustInt32("user_id", &userID).
		Bool("done", &done).
		Bool("overdue", &filter.Overdue).
		Bool("upcoming", &filter.Upcoming).
		String("date", &filter.Date).
		String("start_date", &filter.StartDate).
		String("end_date", &filter.EndDate).
		BindError()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters").SetInternal(err)
	}
	if userID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
	}
	if c.QueryParam("done") != "" {
		filter.Done = &done
	}
	list, err := s.Store.ListTasks(c.Request().Context(), userID, filter)
	if err != nil {
		return httpError(err, "list tasks")
	}
	resp := make([]*taskResponse, 0, len(list))
	for _, task := range list {
		resp = append(resp, convertTaskFromStore(task))
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) getTask(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	task, err := s.Store.GetTask(c.Request().Context(), id)
	if err != nil {
		return httpError(err, "get task")
	}
	return c.JSON(http.StatusOK, convertTaskFromStore(task))
}

func (s *Server) createTask(c echo.Context) error {
	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body").SetInternal(err)
	}
	ctx := c.Request().Context()
	user, err := s.Store.GetUser(ctx, &store.FindUser{ID: &req.UserID})
	if err != nil {
		return httpError(err, "get user")
	}
	if user == nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	task, err := s.Store.CreateTask(ctx, &store.Task{
		UserID:  req.UserID,
		Title:   req.Title,
		DueDate: req.DueDate,
		Done:    req.Done,
	})
	if err != nil {
		return httpError(err, "create task")
	}
	s.indexTask(c, task)
	return c.JSON(http.StatusCreated, convertTaskFromStore(task))
}

func (s *Server) updateTask(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body").SetInternal(err)
	}
	task, err := s.Store.UpdateTask(c.Request().Context(), &store.UpdateTask{
		ID:      id,
		Title:   req.Title,
		DueDate: req.DueDate,
		Done:    req.Done,
	})
	if err != nil {
		return httpError(err, "update task")
	}
	s.indexTask(c, task)
	return c.JSON(http.StatusOK, convertTaskFromStore(task))
}

func (s *Server) deleteTask(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	task, err := s.Store.GetTask(ctx, id)
	if err != nil {
		return httpError(err, "get task")
	}
	if err := s.Store.DeleteTask(ctx, id); err != nil {
		return httpError(err, "delete task")
	}
	if s.Index != nil {
		if err := s.Index.Remove(ctx, task.ID, task.UserID); err != nil {
			slog.Warn("failed to remove task from index", "task_id", task.ID, "error", err)
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Task deleted successfully."})
}

// indexTask keeps the semantic index in step with API writes. Failures
// only degrade search, so they are logged.
func (s *Server) indexTask(c echo.Context, task *store.Task) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Upsert(c.Request().Context(), task.ID, task.Title, task.UserID, task.DueDate); err != nil {
		slog.Warn("failed to index task", "task_id", task.ID, "error", err)
	}
}

func pathID(c echo.Context) (int32, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return int32(id), nil
}
