package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-menu-builder/internal/config"
	"telegram-menu-builder/internal/domain"
	"telegram-menu-builder/internal/domain/ports/adapter"
	"telegram-menu-builder/internal/infra/logging"
	"telegram-menu-builder/internal/infra/metrics"
)

var _ adapter.Messenger = (*Gateway)(nil)

// Gate admits one outbound call at a time at the process-wide rate.
type Gate interface {
	Acquire() time.Duration
}

var tokenRe = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)

// Gateway is the only path from this process to the Bot API. Every call
// passes through the shared gate before it is sent.
type Gateway struct {
	client   *http.Client
	endpoint string
	gate     Gate
	log      *zerolog.Logger

	mu   sync.Mutex
	bots map[string]*tgbotapi.BotAPI
}

func NewGateway(cfg config.BotConfig, gate Gate, client *http.Client, logger *zerolog.Logger) *Gateway {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	return &Gateway{
		client:   client,
		endpoint: endpoint,
		gate:     gate,
		log:      logger,
		bots:     make(map[string]*tgbotapi.BotAPI),
	}
}

// newBot assembles a client by hand; tgbotapi.NewBotAPI would call getMe
// outside the gate.
func (g *Gateway) newBot(credential string) *tgbotapi.BotAPI {
	b := &tgbotapi.BotAPI{Token: credential, Client: g.client, Buffer: 100}
	b.SetAPIEndpoint(g.endpoint)
	return b
}

// bot returns the cached client for a credential we send on behalf of.
// Unverified credentials go through newBot so they never enter the cache.
func (g *Gateway) bot(credential string) *tgbotapi.BotAPI {
	g.mu.Lock()
	defer g.mu.Unlock()
	if b, ok := g.bots[credential]; ok {
		return b
	}
	b := g.newBot(credential)
	g.bots[credential] = b
	return b
}

func (g *Gateway) call(ctx context.Context, bot func() *tgbotapi.BotAPI, method string, fn func(*tgbotapi.BotAPI) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	metrics.ObserveLimiterWait(g.gate.Acquire())
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	err := fn(bot())
	result := "ok"
	if err != nil {
		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) {
			result = "rejected"
		} else {
			result = "error"
		}
	}
	metrics.ObserveTelegramCall(method, result, time.Since(start))
	return err
}

func (g *Gateway) SendMessage(ctx context.Context, credential string, chatID int64, text string, keyboard []string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if len(keyboard) > 0 {
		msg.ReplyMarkup = replyKeyboard(keyboard)
	}

	err := g.call(ctx, func() *tgbotapi.BotAPI { return g.bot(credential) }, "sendMessage", func(b *tgbotapi.BotAPI) error {
		_, err := b.Send(msg)
		return err
	})
	if err == nil {
		return nil
	}
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		logging.With(ctx, g.log).Warn().Int("code", apiErr.Code).Int64("chat_id", chatID).
			Msg(apiErr.Message)
		return fmt.Errorf("%w: sendMessage: %s", domain.ErrDeliveryFailed, apiErr.Message)
	}
	return fmt.Errorf("sendMessage: %w", err)
}

func (g *Gateway) SetWebhook(ctx context.Context, credential, url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("%w: webhook url: %v", domain.ErrInvalidArgument, err)
	}
	err = g.call(ctx, func() *tgbotapi.BotAPI { return g.bot(credential) }, "setWebhook", func(b *tgbotapi.BotAPI) error {
		_, err := b.Request(wh)
		return err
	})
	if err == nil {
		return nil
	}
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: setWebhook: %s", domain.ErrDeliveryFailed, apiErr.Message)
	}
	return fmt.Errorf("setWebhook: %w", err)
}

// GetMe reports false without error when Telegram rejects the credential.
// Strings that cannot be a token are rejected without a call.
func (g *Gateway) GetMe(ctx context.Context, credential string) (bool, error) {
	credential = strings.TrimSpace(credential)
	if !tokenRe.MatchString(credential) {
		return false, nil
	}
	var me tgbotapi.User
	err := g.call(ctx, func() *tgbotapi.BotAPI { return g.newBot(credential) }, "getMe", func(b *tgbotapi.BotAPI) error {
		var err error
		me, err = b.GetMe()
		return err
	})
	if err != nil {
		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) {
			return false, nil
		}
		return false, fmt.Errorf("getMe: %w", err)
	}
	return me.IsBot, nil
}

// replyKeyboard lays labels out one per row.
func replyKeyboard(labels []string) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(labels))
	for _, l := range labels {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(l)))
	}
	return tgbotapi.NewReplyKeyboard(rows...)
}
