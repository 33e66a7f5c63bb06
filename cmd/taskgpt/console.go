package main

import (
	"context"
	"io"

	"github.com/hrygo/taskgpt/ai/session"
	"github.com/hrygo/taskgpt/plugin/chat_apps/channels/console"
)

// runConsole runs a single session on the terminal.
func runConsole(ctx context.Context, runner *session.Runner, in io.Reader, out io.Writer) error {
	ch := console.New(in, out)
	if err := runner.Run(ctx, ch); err != nil {
		return err
	}
	_, err := io.WriteString(out, "\nBye!\n")
	return err
}
