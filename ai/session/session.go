// Package session runs one user's conversation: login, then a loop of
// menu, intent, request and report until the channel closes.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hrygo/taskgpt/ai/agents/tasks"
	"github.com/hrygo/taskgpt/ai/core/llm"
	"github.com/hrygo/taskgpt/ai/internal/strutil"
	"github.com/hrygo/taskgpt/ai/metrics"
	"github.com/hrygo/taskgpt/ai/routing"
	"github.com/hrygo/taskgpt/ai/vector"
	"github.com/hrygo/taskgpt/plugin/chat_apps/channels"
	"github.com/hrygo/taskgpt/store"
)

const (
	msgUnknownIntent = "Hmm, I didn't quite get that. Want to try saying it differently?"
	msgTurnFailed    = "Something went wrong. Please try again."

	// maxFailedTurns ends a session whose turns keep failing back to back.
	maxFailedTurns = 5
)

// Store is the persistence a session needs; *store.Store satisfies it.
type Store interface {
	tasks.TaskStore
	GetUser(ctx context.Context, find *store.FindUser) (*store.User, error)
	CreateUser(ctx context.Context, create *store.User) (*store.User, error)
}

// Classifier classifies menu intents and view filters.
type Classifier interface {
	tasks.Classifier
	ClassifyIntent(ctx context.Context, utterance string) routing.Intent
}

// Config holds the collaborators shared by every session.
type Config struct {
	Store      Store
	Index      vector.Index
	Classifier Classifier
	Extractor  tasks.Extractor
	Resolver   tasks.Resolver

	// LLM writes the menu and confirmation lines. Nil uses static text.
	LLM     llm.Completer
	Metrics *metrics.PrometheusExporter

	MaxAttempts int
	// PasswordCost is the bcrypt cost for new accounts (default: bcrypt.DefaultCost).
	PasswordCost int
	Now          func() time.Time
}

// Runner runs sessions. It is safe to run many sessions concurrently.
type Runner struct {
	cfg Config
}

// NewRunner creates a runner.
func NewRunner(cfg Config) *Runner {
	return &Runner{cfg: cfg}
}

// state is what one session remembers between turns.
type state struct {
	id         string
	user       *store.User
	logger     *slog.Logger
	dispatcher *tasks.Dispatcher
	firstTurn  bool
}

// Run logs the user in and converses until the channel closes or ctx is
// done. A failing turn is reported to the user and the loop goes on. Run
// returns an error when that report cannot be delivered or when
// maxFailedTurns turns fail in a row.
func (r *Runner) Run(ctx context.Context, ch channels.Channel) error {
	s := &state{id: uuid.NewString(), firstTurn: true}
	s.logger = slog.With("session_id", s.id, "platform", ch.Platform())
	s.logger.Info("session started")

	r.cfg.Metrics.SessionStarted(string(ch.Platform()))
	defer r.cfg.Metrics.SessionEnded()

	user, err := r.login(ctx, ch, s.logger)
	if err != nil {
		if ended(ctx, err) || errors.Is(err, errLoginFailed) {
			s.logger.Info("session ended during login", "reason", err)
			return nil
		}
		return fmt.Errorf("login: %w", err)
	}
	s.user = user
	s.logger = s.logger.With("user_id", user.ID)
	s.dispatcher = tasks.NewDispatcher(tasks.Deps{
		UserID:      user.ID,
		Store:       r.cfg.Store,
		Index:       r.cfg.Index,
		Extractor:   r.cfg.Extractor,
		Classifier:  r.cfg.Classifier,
		Resolver:    r.cfg.Resolver,
		Now:         r.cfg.Now,
		MaxAttempts: r.cfg.MaxAttempts,
	})

	failed := 0
	for {
		start := time.Now()
		intent, outcome, err := r.turn(ctx, s, ch)
		if err != nil && ended(ctx, err) {
			s.logger.Info("session ended")
			return nil
		}
		if err == nil {
			failed = 0
			r.cfg.Metrics.RecordTurn(string(intent), outcome, time.Since(start))
			continue
		}

		failed++
		s.logger.Error("turn failed", "intent", intent, "failed_turns", failed, "error", err)
		r.cfg.Metrics.RecordTurn(string(intent), "error", time.Since(start))
		s.firstTurn = true
		if reportErr := ch.Output(ctx, msgTurnFailed); reportErr != nil {
			if ended(ctx, reportErr) {
				s.logger.Info("session ended")
				return nil
			}
			// A report nobody receives ends the session.
			return fmt.Errorf("report failed turn: %w", errors.Join(reportErr, err))
		}
		if failed >= maxFailedTurns {
			return fmt.Errorf("%d turns failed in a row: %w", failed, err)
		}
	}
}

// turn runs one menu-to-report iteration. Panics come back as errors.
func (r *Runner) turn(ctx context.Context, s *state, ch channels.Channel) (intent routing.Intent, outcome string, err error) {
	intent = routing.IntentUnknown
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v\n%s", p, debug.Stack())
		}
	}()

	input, err := ch.Input(ctx, r.menu(ctx, s))
	if err != nil {
		return intent, "", err
	}
	s.firstTurn = false
	input = strings.TrimSpace(input)

	intent = r.cfg.Classifier.ClassifyIntent(ctx, input)
	s.logger.Debug("intent classified", "intent", intent, "input", strutil.Truncate(input, 80))
	if intent == routing.IntentUnknown {
		return intent, "unknown", ch.Output(ctx, msgUnknownIntent)
	}

	if err := ch.Output(ctx, r.confirmation(ctx, s, input, intent)); err != nil {
		return intent, "", err
	}

	req, err := s.dispatcher.Dispatch(ctx, intent, input, ch)
	if err != nil {
		return intent, "", err
	}
	if req == nil {
		return intent, "abandoned", nil
	}

	ok, err := req.Handle(ctx, ch)
	if err != nil {
		return intent, "", err
	}
	if !ok {
		return intent, "refused", nil
	}
	return intent, "done", nil
}

// ended reports whether err means the conversation is over.
func ended(ctx context.Context, err error) bool {
	return errors.Is(err, channels.ErrClosed) || ctx.Err() != nil
}
