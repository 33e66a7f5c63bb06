package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/hrygo/taskgpt/store"
)

type userResponse struct {
	ID       int32  `json:"id"`
	Username string `json:"username"`
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func convertUserFromStore(user *store.User) *userResponse {
	return &userResponse{ID: user.ID, Username: user.Username}
}

func (s *Server) listUsers(c echo.Context) error {
	list, err := s.Store.ListUsers(c.Request().Context(), &store.FindUser{})
	if err != nil {
		return httpError(err, "list users")
	}
	resp := make([]*userResponse, 0, len(list))
	for _, user := range list {
		resp = append(resp, convertUserFromStore(user))
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) createUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body").SetInternal(err)
	}
	if strings.TrimSpace(req.Password) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "password is required")
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to generate password hash").SetInternal(err)
	}
	user, err := s.Store.CreateUser(c.Request().Context(), &store.User{
		Username:     req.Username,
		PasswordHash: string(passwordHash),
	})
	if err != nil {
		return httpError(err, "create user")
	}
	return c.JSON(http.StatusCreated, convertUserFromStore(user))
}

func (s *Server) getUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	return s.findUser(c, &store.FindUser{ID: &id})
}

func (s *Server) getUserByUsername(c echo.Context) error {
	username := c.Param("username")
	return s.findUser(c, &store.FindUser{Username: &username})
}

func (s *Server) findUser(c echo.Context, find *store.FindUser) error {
	user, err := s.Store.GetUser(c.Request().Context(), find)
	if err != nil {
		return httpError(err, "get user")
	}
	if user == nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, convertUserFromStore(user))
}

// deleteUser removes the user with all their tasks and returns the deleted user.
func (s *Server) deleteUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	user, err := s.Store.GetUser(ctx, &store.FindUser{ID: &id})
	if err != nil {
		return httpError(err, "get user")
	}
	if user == nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	if err := s.Store.DeleteUser(ctx, id); err != nil {
		return httpError(err, "delete user")
	}
	return c.JSON(http.StatusOK, convertUserFromStore(user))
}
