// Package console implements the Channel over a terminal.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/hrygo/taskgpt/plugin/chat_apps"
	"github.com/hrygo/taskgpt/plugin/chat_apps/channels"
)

// Channel reads replies line by line from in and writes to out.
type Channel struct {
	in  io.Reader
	out io.Writer

	once  sync.Once
	lines chan string
	err   error // read error, valid after lines is closed
}

// New creates a console channel.
func New(in io.Reader, out io.Writer) *Channel {
	return &Channel{in: in, out: out, lines: make(chan string)}
}

// Platform implements channels.Channel.
func (c *Channel) Platform() chat_apps.Platform {
	return chat_apps.PlatformConsole
}

// Input writes prompt without a newline and waits for the next line.
func (c *Channel) Input(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if prompt != "" {
		if _, err := io.WriteString(c.out, prompt); err != nil {
			return "", channels.Closed(err)
		}
	}
	c.once.Do(func() { go c.readLines() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-c.lines:
		if !ok {
			return "", channels.Closed(c.err)
		}
		return line, nil
	}
}

// Output writes text followed by a newline.
func (c *Channel) Output(_ context.Context, text string) error {
	if _, err := fmt.Fprintln(c.out, text); err != nil {
		return channels.Closed(err)
	}
	return nil
}

// readLines runs until in is exhausted. A line is handed over only when
// Input asks for one.
func (c *Channel) readLines() {
	defer close(c.lines)
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		c.lines <- strings.TrimRight(scanner.Text(), "\r")
	}
	c.err = scanner.Err()
}

var _ channels.Channel = (*Channel)(nil)
