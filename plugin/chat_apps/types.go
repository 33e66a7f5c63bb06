// Package chat_apps describes the chat platforms TaskGPT talks through.
// Supported platforms: console, websocket (web), Telegram.
package chat_apps

import "time"

// Platform represents a supported chat platform.
type Platform string

const (
	PlatformConsole  Platform = "console"
	PlatformWeb      Platform = "web"
	PlatformTelegram Platform = "telegram"
)

// IsValid checks if the platform is valid.
func (p Platform) IsValid() bool {
	switch p {
	case PlatformConsole, PlatformWeb, PlatformTelegram:
		return true
	default:
		return false
	}
}

// IncomingMessage represents a text message from a chat platform.
type IncomingMessage struct {
	Platform       Platform  // Source platform
	PlatformUserID string    // Platform-specific user ID
	PlatformChatID string    // Platform-specific chat ID
	Username       string    // Platform display handle, if any
	Content        string    // Text content
	Timestamp      time.Time // Message timestamp
}

// OutgoingMessage represents a text message to send to a chat platform.
type OutgoingMessage struct {
	PlatformChatID string // Destination chat ID
	Content        string // Text content
	ParseMode      string // Markdown/HTML parsing mode (optional)
}
