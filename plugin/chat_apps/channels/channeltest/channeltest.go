// Package channeltest provides a scripted Channel for tests.
package channeltest

import (
	"context"
	"strings"
	"sync"

	"github.com/hrygo/taskgpt/plugin/chat_apps"
	"github.com/hrygo/taskgpt/plugin/chat_apps/channels"
)

// Channel replays scripted replies and records everything shown to the user.
// Once the script runs out Input returns channels.ErrClosed.
type Channel struct {
	mu         sync.Mutex
	replies    []string
	prompts    []string
	outputs    []string
	transcript []string
}

// New creates a channel that answers Input with replies, in order.
func New(replies ...string) *Channel {
	return &Channel{replies: replies}
}

// Platform implements channels.Channel.
func (c *Channel) Platform() chat_apps.Platform {
	return chat_apps.PlatformConsole
}

// Input implements channels.Channel.
func (c *Channel) Input(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, prompt)
	if prompt != "" {
		c.transcript = append(c.transcript, prompt)
	}
	if len(c.replies) == 0 {
		return "", channels.ErrClosed
	}
	reply := c.replies[0]
	c.replies = c.replies[1:]
	c.transcript = append(c.transcript, "> "+reply)
	return reply, nil
}

// Output implements channels.Channel.
func (c *Channel) Output(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outputs = append(c.outputs, text)
	c.transcript = append(c.transcript, text)
	return nil
}

// Prompts returns every Input prompt, empty ones included.
func (c *Channel) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prompts...)
}

// Outputs returns every Output text.
func (c *Channel) Outputs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.outputs...)
}

// Transcript returns prompts, "> "-prefixed replies and outputs in order,
// one per line.
func (c *Channel) Transcript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Join(c.transcript, "\n")
}

// Remaining returns how many scripted replies are unused.
func (c *Channel) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.replies)
}

var _ channels.Channel = (*Channel)(nil)
