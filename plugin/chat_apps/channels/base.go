// Package channels provides the conversation Channel every session talks through.
package channels

import (
	"context"

	"github.com/hrygo/taskgpt/plugin/chat_apps"
)

// Channel is one user's conversation. Input shows prompt and blocks until the
// user replies; Output shows text without waiting. Both return ErrClosed once
// the user has gone away.
type Channel interface {
	// Platform returns the platform the conversation runs on.
	Platform() chat_apps.Platform

	// Input shows prompt (which may be empty) and returns the user's reply.
	Input(ctx context.Context, prompt string) (string, error)

	// Output shows text to the user.
	Output(ctx context.Context, text string) error
}

// Errors
var (
	ErrClosed         = &ChannelError{Code: "CLOSED", Message: "channel closed"}
	ErrInvalidPayload = &ChannelError{Code: "INVALID_PAYLOAD", Message: "could not parse message payload"}
)

// ChannelError represents an error in channel operations.
type ChannelError struct {
	Code    string
	Message string
	Err     error
}

func (e *ChannelError) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}

// Is matches any ChannelError with the same code, so wrapped causes still
// compare equal to the sentinels.
func (e *ChannelError) Is(target error) bool {
	t, ok := target.(*ChannelError)
	return ok && t.Code == e.Code
}

// Closed returns an ErrClosed carrying cause.
func Closed(cause error) error {
	return &ChannelError{Code: ErrClosed.Code, Message: ErrClosed.Message, Err: cause}
}
