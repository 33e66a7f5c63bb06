// Package websocket implements the Channel over a websocket connection.
// Both directions carry JSON frames {"type":"chat_message","text":"..."}.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	ws "nhooyr.io/websocket"

	"github.com/hrygo/taskgpt/plugin/chat_apps"
	"github.com/hrygo/taskgpt/plugin/chat_apps/channels"
)

// FrameChatMessage is the only frame type a conversation uses.
const FrameChatMessage = "chat_message"

const readLimit = 32768

// Frame is one JSON message on the wire.
type Frame struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Channel is one websocket conversation.
type Channel struct {
	conn *ws.Conn
}

// New wraps an accepted connection.
func New(conn *ws.Conn) *Channel {
	conn.SetReadLimit(readLimit)
	return &Channel{conn: conn}
}

// Accept upgrades an HTTP request into a Channel.
func Accept(w http.ResponseWriter, r *http.Request, opts *ws.AcceptOptions) (*Channel, error) {
	conn, err := ws.Accept(w, r, opts)
	if err != nil {
		return nil, fmt.Errorf("websocket accept: %w", err)
	}
	return New(conn), nil
}

// Platform implements channels.Channel.
func (c *Channel) Platform() chat_apps.Platform {
	return chat_apps.PlatformWeb
}

// Input sends prompt as a chat message and waits for the client's next one.
// Frames of other types are ignored.
func (c *Channel) Input(ctx context.Context, prompt string) (string, error) {
	if prompt != "" {
		if err := c.Output(ctx, prompt); err != nil {
			return "", err
		}
	}
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", channels.Closed(err)
		}
		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			slog.Warn("websocket: invalid frame", "error", err)
			continue
		}
		if frame.Type != FrameChatMessage {
			slog.Debug("websocket: ignoring frame", "type", frame.Type)
			continue
		}
		return frame.Text, nil
	}
}

// Output sends text as a chat message.
func (c *Channel) Output(ctx context.Context, text string) error {
	data, err := json.Marshal(Frame{Type: FrameChatMessage, Text: text})
	if err != nil {
		return err
	}
	if err := c.conn.Write(ctx, ws.MessageText, data); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return channels.Closed(err)
	}
	return nil
}

// Close ends the conversation with a normal closure.
func (c *Channel) Close(reason string) error {
	return c.conn.Close(ws.StatusNormalClosure, reason)
}

var _ channels.Channel = (*Channel)(nil)
