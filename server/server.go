// Package server exposes the task store over HTTP and hosts websocket chat
// sessions.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hrygo/taskgpt/ai/metrics"
	"github.com/hrygo/taskgpt/ai/session"
	"github.com/hrygo/taskgpt/ai/vector"
	"github.com/hrygo/taskgpt/internal/profile"
	"github.com/hrygo/taskgpt/store"
)

const shutdownTimeout = 10 * time.Second

// Server is the HTTP front of the application.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	// Runner serves /ws chat sessions. Nil disables the endpoint.
	Runner *session.Runner
	// Index is kept in sync with task writes made through the API.
	Index   vector.Index
	Metrics *metrics.PrometheusExporter

	echoServer *echo.Echo

	// sessions tracks running websocket sessions; closing stops them.
	sessions sync.WaitGroup
	stop     context.Context
	cancel   context.CancelFunc
}

// NewServer wires the routes. Call Start to listen.
func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store, runner *session.Runner, index vector.Index, exporter *metrics.PrometheusExporter) *Server {
	s := &Server{
		Profile: profile,
		Store:   store,
		Runner:  runner,
		Index:   index,
		Metrics: exporter,
	}
	s.stop, s.cancel = context.WithCancel(context.WithoutCancel(ctx))

	e := echo.New()
	e.Debug = profile.IsDev()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/healthz" || c.Path() == "/metrics"
		},
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				slog.Warn("http request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			slog.Debug("http request", attrs...)
			return nil
		},
	}))

	e.GET("/healthz", s.healthz)
	if exporter != nil {
		e.GET("/metrics", echo.WrapHandler(exporter.Handler()))
	}
	if runner != nil {
		e.GET("/ws", s.chat)
	}

	api := e.Group("/api/v1", middleware.CORS())
	api.GET("/tasks", s.listTasks)
	api.POST("/tasks", s.createTask)
	api.GET("/tasks/:id", s.getTask)
	api.PUT("/tasks/:id", s.updateTask)
	api.DELETE("/tasks/:id", s.deleteTask)

	api.GET("/users", s.listUsers)
	api.POST("/users", s.createUser)
	api.GET("/users/:id", s.getUser)
	api.GET("/users/by-username/:username", s.getUserByUsername)
	api.DELETE("/users/:id", s.deleteUser)

	s.echoServer = e
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

// Start listens on the profile address and serves until ctx is done, then
// shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", address)
	}
	s.echoServer.Listener = listener
	slog.Info("server listening", "addr", listener.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.Shutdown(shutdownCtx)
		return nil
	}
}

// Shutdown stops accepting requests, ends websocket sessions and waits for
// them to return.
func (s *Server) Shutdown(ctx context.Context) {
	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown http server", "error", err)
	}
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.sessions.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		slog.Warn("chat sessions still running at shutdown")
	}
	slog.Info("server stopped")
}

func (s *Server) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.Profile.Version,
	})
}

// httpError maps store errors onto HTTP statuses.
func httpError(err error, action string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrDuplicateTitle), errors.Is(err, store.ErrDuplicateUsername):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrInvalidArgument):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to "+action).SetInternal(err)
	}
}
