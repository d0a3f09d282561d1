package usecase

import (
	"context"
	"errors"
	"strings"

	"telegram-menu-builder/internal/domain"
	"telegram-menu-builder/internal/domain/ports/adapter"
	"telegram-menu-builder/internal/infra/logging"

	"github.com/rs/zerolog"
)

const (
	rootGreeting     = "Hi! Send me the token of a bot you administer and I will put it under control."
	rootRegistered   = "The bot is now under control. Open it and send /start to build its menus."
	rootAlreadyTaken = "This bot is already controlled."
	rootInvalidToken = "This is not a valid bot token."
)

// Compile-time check
var _ EventHandler = (*rootBotUC)(nil)

// rootBotUC is the platform's own bot: it greets and registers child bots.
type rootBotUC struct {
	tenants TenantUseCase
	bot     adapter.Messenger
	log     *zerolog.Logger
}

func NewRootBotUseCase(tenants TenantUseCase, bot adapter.Messenger, logger *zerolog.Logger) *rootBotUC {
	return &rootBotUC{tenants: tenants, bot: bot, log: logger}
}

func (r *rootBotUC) HandleEvent(ctx context.Context, ev Event) (bool, error) {
	defer logging.TraceDuration(r.log, "RootBotUC.HandleEvent")()

	text := rootGreeting
	if strings.TrimSpace(ev.Text) != CommandStart {
		_, err := r.tenants.Register(ctx, ev.Text, ev.UserID)
		switch {
		case err == nil:
			text = rootRegistered
		case errors.Is(err, domain.ErrAlreadyRegistered):
			text = rootAlreadyTaken
		case errors.Is(err, domain.ErrInvalidCredential), errors.Is(err, domain.ErrInvalidArgument):
			text = rootInvalidToken
		default:
			return false, err
		}
	}

	if err := r.bot.SendMessage(ctx, ev.Credential, ev.ChatID, text, nil); err != nil {
		return false, err
	}
	return true, nil
}
