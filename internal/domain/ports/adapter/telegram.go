package adapter

import "context"

// Messenger is the outbound port toward the Telegram Bot API. Every call is
// made with the credential of the bot that speaks.
type Messenger interface {
	// SendMessage delivers text with an optional reply keyboard, one label
	// per row. ok=false from Telegram is returned as an error.
	SendMessage(ctx context.Context, credential string, chatID int64, text string, keyboard []string) error
	SetWebhook(ctx context.Context, credential, url string) error
	// GetMe reports whether the credential belongs to a live bot.
	GetMe(ctx context.Context, credential string) (bool, error)
}
