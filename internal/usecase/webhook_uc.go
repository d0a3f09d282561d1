package usecase

import (
	"context"
	"fmt"
	"strings"

	"telegram-menu-builder/internal/domain/ports/adapter"
	"telegram-menu-builder/internal/domain/ports/repository"
	"telegram-menu-builder/internal/infra/logging"

	"github.com/rs/zerolog"
)

// WebhookPath is the route prefix every bot's webhook is served under.
const WebhookPath = "/webhook/"

// Compile-time check
var _ WebhookUseCase = (*webhookUC)(nil)

type WebhookUseCase interface {
	// Register points one bot's webhook at this deployment.
	Register(ctx context.Context, credential string) error
	// RegisterAll re-registers the root bot and every tenant. It returns the
	// number of bots that failed.
	RegisterAll(ctx context.Context) (failed int, err error)
}

type webhookUC struct {
	tenants   repository.TenantRepository
	bot       adapter.Messenger
	publicURL string
	rootToken string
	log       *zerolog.Logger
}

func NewWebhookUseCase(tenants repository.TenantRepository, bot adapter.Messenger, publicURL, rootToken string, logger *zerolog.Logger) *webhookUC {
	return &webhookUC{
		tenants:   tenants,
		bot:       bot,
		publicURL: strings.TrimRight(publicURL, "/"),
		rootToken: rootToken,
		log:       logger,
	}
}

// URLFor is <public_url>/webhook/<credential>.
func (w *webhookUC) URLFor(credential string) string {
	return w.publicURL + WebhookPath + credential
}

func (w *webhookUC) Register(ctx context.Context, credential string) error {
	defer logging.TraceDuration(w.log, "WebhookUC.Register")()
	if err := w.bot.SetWebhook(ctx, credential, w.URLFor(credential)); err != nil {
		return fmt.Errorf("set webhook for %s: %w", logging.Redact(credential, false), err)
	}
	return nil
}

func (w *webhookUC) RegisterAll(ctx context.Context) (int, error) {
	defer logging.TraceDuration(w.log, "WebhookUC.RegisterAll")()

	tenants, err := w.tenants.List(ctx, repository.NoTX)
	if err != nil {
		return 0, fmt.Errorf("list tenants: %w", err)
	}
	creds := make([]string, 0, len(tenants)+1)
	if w.rootToken != "" {
		creds = append(creds, w.rootToken)
	}
	for _, t := range tenants {
		creds = append(creds, t.Token)
	}

	failed := 0
	for _, c := range creds {
		if err := w.Register(ctx, c); err != nil {
			failed++
			w.log.Warn().Err(err).Msg("webhook registration failed")
		}
	}
	w.log.Info().Int("bots", len(creds)).Int("failed", failed).Msg("webhooks registered")
	return failed, nil
}
