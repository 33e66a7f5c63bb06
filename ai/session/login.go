package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/hrygo/taskgpt/ai/agents/tasks"
	"github.com/hrygo/taskgpt/plugin/chat_apps/channels"
	"github.com/hrygo/taskgpt/store"
)

const (
	maxPasswordAttempts = 3

	msgLoginBanner     = "--- Login or Signup ---"
	promptUsername     = "Enter your username: "
	promptPassword     = "Enter your password: "
	promptNewPassword  = "You're new! Please create a password: "
	msgWrongPassword   = "Incorrect password, please try again."
	msgTooManyAttempts = "Too many failed attempts. Goodbye!"
	msgWelcomeBack     = "Welcome back to TaskGPT, %s! 🎉"
	msgWelcome         = "Welcome to TaskGPT, %s! 🚀"
)

// errLoginFailed ends a session whose user could not be authenticated.
var errLoginFailed = errors.New("login failed")

// login authenticates a known user or signs up a new one.
func (r *Runner) login(ctx context.Context, ch channels.Channel, logger *slog.Logger) (*store.User, error) {
	if err := ch.Output(ctx, msgLoginBanner); err != nil {
		return nil, err
	}
	username, err := r.ask(ctx, ch, promptUsername)
	if err != nil {
		return nil, err
	}

	user, err := r.cfg.Store.GetUser(ctx, &store.FindUser{Username: &username})
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}
	if user == nil {
		return r.signup(ctx, ch, logger, username)
	}

	for range maxPasswordAttempts {
		password, err := ch.Input(ctx, promptPassword)
		if err != nil {
			return nil, err
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil {
			logger.Info("user logged in", "user_id", user.ID)
			return user, ch.Output(ctx, fmt.Sprintf(msgWelcomeBack, user.Username))
		}
		if err := ch.Output(ctx, msgWrongPassword); err != nil {
			return nil, err
		}
	}
	logger.Warn("login rejected", "username", username)
	if err := ch.Output(ctx, msgTooManyAttempts); err != nil {
		return nil, err
	}
	return nil, errLoginFailed
}

func (r *Runner) signup(ctx context.Context, ch channels.Channel, logger *slog.Logger, username string) (*store.User, error) {
	password, err := r.ask(ctx, ch, promptNewPassword)
	if err != nil {
		return nil, err
	}
	cost := r.cfg.PasswordCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user, err := r.cfg.Store.CreateUser(ctx, &store.User{Username: username, PasswordHash: string(hash)})
	if err != nil {
		return nil, fmt.Errorf("create user %q: %w", username, err)
	}
	logger.Info("user signed up", "user_id", user.ID)
	return user, ch.Output(ctx, fmt.Sprintf(msgWelcome, user.Username))
}

// ask repeats prompt until the reply is not blank.
func (r *Runner) ask(ctx context.Context, ch channels.Channel, prompt string) (string, error) {
	attempts := r.cfg.MaxAttempts
	if attempts <= 0 {
		attempts = tasks.DefaultMaxAttempts
	}
	for range attempts {
		reply, err := ch.Input(ctx, prompt)
		if err != nil {
			return "", err
		}
		if reply = strings.TrimSpace(reply); reply != "" {
			return reply, nil
		}
	}
	return "", errLoginFailed
}
