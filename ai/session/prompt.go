package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hrygo/taskgpt/ai/routing"
)

const menuTemplate = `You are a friendly virtual assistant for a to-do app.
Greet the user by saying "Hi {name_intro}" and then present 5 things you can help with:
{options}
Make it feel friendly, not robotic. Add emojis if helpful. Return only the message.`

const confirmationTemplate = `You are a friendly, helpful AI assistant for a to-do list app.

The user typed: "{user_input}"
You interpreted their intent as: {intent}

Write a short, warm response confirming what the user wants to do.
Example: "Sure! Let's edit that task. ✏️"
Keep it conversational and kind. Emojis are okay. Do not give instructions here.
Just confirm and encourage the user and ask them for more information like title or ID.

Respond with just 1-2 sentences.`

// staticConfirmations are used when no model is configured or it fails.
var staticConfirmations = map[routing.Intent]string{
	routing.IntentViewTasks:  "Sure! Let's take a look at your tasks. 👀",
	routing.IntentAddTask:    "Great, let's add a new task! 📝",
	routing.IntentMarkDone:   "Nice work! Let's check a task off. ✅",
	routing.IntentDeleteTask: "Okay, let's remove a task. 🗑️",
	routing.IntentEditTask:   "Sure! Let's edit that task. ✏️",
}

func nameIntro(s *state) string {
	if s.firstTurn {
		return s.user.Username
	}
	return s.user.Username + ", what else can I do for you"
}

// menu returns the main menu prompt, written by the model when one is
// configured. The returned text ends with a newline.
func (r *Runner) menu(ctx context.Context, s *state) string {
	intro := nameIntro(s)
	if text := r.generate(ctx, s.logger, strings.NewReplacer(
		"{name_intro}", intro,
		"{options}", routing.MenuOptions.Render(),
	).Replace(menuTemplate)); text != "" {
		return text + "\n"
	}
	return fmt.Sprintf("Hi %s! Here's what I can help with:\n%s\n", intro, routing.MenuOptions.Render())
}

// confirmation returns the line acknowledging the recognized intent.
func (r *Runner) confirmation(ctx context.Context, s *state, input string, intent routing.Intent) string {
	label := routing.MenuOptions.Label(intent.MenuCode())
	if text := r.generate(ctx, s.logger, strings.NewReplacer(
		"{user_input}", input,
		"{intent}", label,
	).Replace(confirmationTemplate)); text != "" {
		return text
	}
	return staticConfirmations[intent]
}

// generate asks the model for a short message. It returns "" when no
// model is configured or the call fails.
func (r *Runner) generate(ctx context.Context, logger *slog.Logger, prompt string) string {
	if r.cfg.LLM == nil {
		return ""
	}
	text, err := r.cfg.LLM.Complete(ctx, prompt)
	if err != nil {
		logger.Warn("message generation failed, using static text", "error", err)
		return ""
	}
	return strings.TrimSpace(text)
}
