// Package telegram implements the Channel over a Telegram bot, one
// conversation per chat.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hrygo/taskgpt/plugin/chat_apps"
	"github.com/hrygo/taskgpt/plugin/chat_apps/channels"
)

const (
	pollTimeoutSeconds = 30
	inboxSize          = 16
)

// TelegramConfig holds configuration for the Telegram channel.
type TelegramConfig struct {
	BotToken string
	// APIEndpoint overrides tgbotapi.APIEndpoint, e.g. for a local Bot API server.
	APIEndpoint string
}

// Bot is the part of the Bot API the hub uses; *tgbotapi.BotAPI satisfies it.
type Bot interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// NewBot connects to the Bot API.
func NewBot(config *TelegramConfig) (*tgbotapi.BotAPI, error) {
	endpoint := config.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(config.BotToken, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	return bot, nil
}

// SessionHandler runs one conversation. It returns when the conversation ends.
type SessionHandler func(ctx context.Context, ch channels.Channel)

// Hub long-polls the bot and runs a SessionHandler per chat. The message
// that opens a chat starts its session and is not delivered as input.
type Hub struct {
	bot     Bot
	handler SessionHandler

	mu    sync.Mutex
	chats map[int64]*Channel
	wg    sync.WaitGroup
}

// NewHub creates a hub.
func NewHub(bot Bot, handler SessionHandler) *Hub {
	return &Hub{bot: bot, handler: handler, chats: make(map[int64]*Channel)}
}

// Run polls updates until ctx is done or the update stream ends, then
// closes every open conversation and waits for its session to return.
func (h *Hub) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = pollTimeoutSeconds
	updates := h.bot.GetUpdatesChan(cfg)

	defer h.shutdown()
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			msg, err := ParseUpdate(update)
			if err != nil {
				slog.Debug("telegram: skipping update", "update_id", update.UpdateID, "error", err)
				continue
			}
			h.dispatch(ctx, msg)
		}
	}
}

// ActiveChats returns the number of running conversations.
func (h *Hub) ActiveChats() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.chats)
}

func (h *Hub) dispatch(ctx context.Context, msg *chat_apps.IncomingMessage) {
	chatID, err := strconv.ParseInt(msg.PlatformChatID, 10, 64)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.chats[chatID]; ok {
		ch.deliver(msg.Content)
		return
	}

	ch := newChannel(h.bot, chatID)
	h.chats[chatID] = ch
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer h.remove(chatID, ch)
		slog.Info("telegram: session started", "chat_id", chatID, "username", msg.Username)
		h.handler(ctx, ch)
	}()
}

func (h *Hub) remove(chatID int64, ch *Channel) {
	ch.close()
	h.mu.Lock()
	if h.chats[chatID] == ch {
		delete(h.chats, chatID)
	}
	h.mu.Unlock()
}

func (h *Hub) shutdown() {
	h.bot.StopReceivingUpdates()
	h.mu.Lock()
	for _, ch := range h.chats {
		ch.close()
	}
	h.mu.Unlock()
	h.wg.Wait()
}

// ParseUpdate converts a text update into an IncomingMessage.
func ParseUpdate(update tgbotapi.Update) (*chat_apps.IncomingMessage, error) {
	tgMsg := update.Message
	if tgMsg == nil {
		tgMsg = update.EditedMessage
	}
	if tgMsg == nil || tgMsg.Chat == nil || tgMsg.Text == "" {
		return nil, channels.ErrInvalidPayload
	}

	msg := &chat_apps.IncomingMessage{
		Platform:       chat_apps.PlatformTelegram,
		PlatformChatID: strconv.FormatInt(tgMsg.Chat.ID, 10),
		Content:        tgMsg.Text,
		Timestamp:      time.Unix(int64(tgMsg.Date), 0),
	}
	if tgMsg.From != nil {
		msg.PlatformUserID = strconv.FormatInt(tgMsg.From.ID, 10)
		msg.Username = tgMsg.From.UserName
	}
	return msg, nil
}

// Channel is one Telegram chat.
type Channel struct {
	bot    Bot
	chatID int64

	inbox chan string
	done  chan struct{}
	once  sync.Once
}

func newChannel(bot Bot, chatID int64) *Channel {
	return &Channel{
		bot:    bot,
		chatID: chatID,
		inbox:  make(chan string, inboxSize),
		done:   make(chan struct{}),
	}
}

// Platform implements channels.Channel.
func (c *Channel) Platform() chat_apps.Platform {
	return chat_apps.PlatformTelegram
}

// Input sends prompt and waits for the chat's next message.
func (c *Channel) Input(ctx context.Context, prompt string) (string, error) {
	if err := c.Output(ctx, prompt); err != nil {
		return "", err
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-c.done:
		return "", channels.ErrClosed
	case text := <-c.inbox:
		return text, nil
	}
}

// Output sends text as a chat message. Empty text is not sent.
func (c *Channel) Output(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-c.done:
		return channels.ErrClosed
	default:
	}
	if text == "" {
		return nil
	}
	if _, err := c.bot.Send(tgbotapi.NewMessage(c.chatID, text)); err != nil {
		slog.Warn("telegram: send failed", "chat_id", c.chatID, "error", err)
		if unreachable(err) {
			c.close()
			return channels.Closed(err)
		}
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// unreachable reports whether err means the chat will never accept another
// message: the bot was blocked or kicked, or the chat no longer exists.
func unreachable(err error) bool {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		var v tgbotapi.Error
		if !errors.As(err, &v) {
			return false
		}
		apiErr = &v
	}
	switch apiErr.Code {
	case http.StatusForbidden:
		return true
	case http.StatusBadRequest:
		return strings.Contains(strings.ToLower(apiErr.Message), "chat not found")
	}
	return false
}

// deliver queues text for Input, dropping it when the session is not
// keeping up.
func (c *Channel) deliver(text string) {
	select {
	case c.inbox <- text:
	default:
		slog.Warn("telegram: inbox full, dropping message", "chat_id", c.chatID)
	}
}

func (c *Channel) close() {
	c.once.Do(func() { close(c.done) })
}

var _ channels.Channel = (*Channel)(nil)
