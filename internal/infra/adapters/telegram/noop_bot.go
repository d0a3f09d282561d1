package telegram

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"telegram-menu-builder/internal/domain/ports/adapter"
)

var _ adapter.Messenger = (*NoopMessenger)(nil)

// NoopMessenger implements adapter.Messenger for local/dev runs.
// It logs messages instead of calling Telegram and accepts any token-shaped credential.
type NoopMessenger struct {
	log *zerolog.Logger
}

func NewNoopMessenger(logger *zerolog.Logger) *NoopMessenger {
	return &NoopMessenger{log: logger}
}

func (n *NoopMessenger) SendMessage(ctx context.Context, credential string, chatID int64, text string, keyboard []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.log.Info().Int64("chat_id", chatID).Strs("keyboard", keyboard).Msgf("[noop-telegram] %s", text)
	return nil
}

func (n *NoopMessenger) SetWebhook(ctx context.Context, credential, url string) error {
	n.log.Info().Str("url", url).Msg("[noop-telegram] setWebhook")
	return nil
}

func (n *NoopMessenger) GetMe(ctx context.Context, credential string) (bool, error) {
	return tokenRe.MatchString(strings.TrimSpace(credential)), nil
}
