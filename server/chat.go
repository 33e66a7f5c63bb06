package server

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/taskgpt/plugin/chat_apps/channels/websocket"
)

// chat upgrades the request and runs one chat session on the connection.
func (s *Server) chat(c echo.Context) error {
	ch, err := websocket.Accept(c.Response(), c.Request(), nil)
	if err != nil {
		// Accept has already written the HTTP error.
		slog.Warn("websocket upgrade failed", "error", err)
		return nil
	}

	s.sessions.Add(1)
	defer s.sessions.Done()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()
	stop := context.AfterFunc(s.stop, cancel)
	defer stop()

	if err := s.Runner.Run(ctx, ch); err != nil {
		slog.Error("chat session failed", "remote", c.RealIP(), "error", err)
		_ = ch.Close("session failed")
		return nil
	}
	_ = ch.Close("")
	return nil
}
