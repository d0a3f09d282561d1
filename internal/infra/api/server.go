package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-menu-builder/internal/domain"
	"telegram-menu-builder/internal/domain/ports/adapter"
	"telegram-menu-builder/internal/infra/logging"
	"telegram-menu-builder/internal/infra/metrics"
	red "telegram-menu-builder/internal/infra/redis"
	"telegram-menu-builder/internal/usecase"
)

const (
	webhookPrefix = usecase.WebhookPath
	maxUpdateSize = 1 << 20
)

// Server is the inbound side of every bot hosted here. Telegram posts each
// update to /webhook/<token>; the token picks the root bot or a tenant.
type Server struct {
	rootToken  string
	root       usecase.EventHandler
	nav        usecase.EventHandler
	flood      adapter.FloodGuard
	floodLimit int
	log        *zerolog.Logger
}

// NewServer wires the webhook endpoint. inboundPerMinute <= 0 or a nil
// flood guard disables per-user throttling.
func NewServer(rootToken string, root, nav usecase.EventHandler, flood adapter.FloodGuard, inboundPerMinute int, logger *zerolog.Logger) *Server {
	return &Server{
		rootToken:  rootToken,
		root:       root,
		nav:        nav,
		flood:      flood,
		floodLimit: inboundPerMinute,
		log:        logger,
	}
}

// Routes attaches the webhook, health and metrics endpoints.
func (s *Server) Routes(r chi.Router) {
	r.Post(webhookPrefix+"{token}", s.handleWebhook)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())
}

// NewRouter mounts every route group on one chi router behind the common
// middleware stack.
func NewRouter(logger *zerolog.Logger, timeout time.Duration, mounts ...func(chi.Router)) http.Handler {
	r := chi.NewRouter()
	for _, m := range mounts {
		m(r)
	}
	return Chain(r, TraceID(), Recover(logger), RequestLog(logger), Timeout(timeout))
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	target, handler := "child", s.nav
	if token == s.rootToken {
		target, handler = "root", s.root
	}

	var upd tgbotapi.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateSize)).Decode(&upd); err != nil {
		metrics.IncWebhookUpdate(target, "bad_request")
		http.Error(w, "invalid update", http.StatusBadRequest)
		return
	}

	msg := upd.Message
	if msg == nil || msg.From == nil || msg.Chat == nil || strings.TrimSpace(msg.Text) == "" {
		metrics.IncWebhookUpdate(target, "ignored")
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx := logging.WithTgID(r.Context(), msg.From.ID)
	l := logging.With(ctx, s.log)

	if s.floodLimit > 0 && s.flood != nil {
		allowed, err := s.flood.Allow(ctx, red.InboundKey(botKey(token), msg.From.ID), s.floodLimit, time.Minute)
		if err != nil {
			l.Warn().Err(err).Msg("flood guard unavailable, letting update through")
		} else if !allowed {
			metrics.IncFloodDrop()
			metrics.IncWebhookUpdate(target, "dropped")
			w.WriteHeader(http.StatusOK)
			return
		}
	}

	ev := usecase.Event{
		Credential: token,
		ChatID:     msg.Chat.ID,
		UserID:     msg.From.ID,
		Text:       msg.Text,
	}
	sent, err := handler.HandleEvent(ctx, ev)
	switch {
	case err == nil:
		outcome := "handled"
		if !sent {
			outcome = "noop"
		}
		metrics.IncWebhookUpdate(target, outcome)
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, domain.ErrNotFound):
		metrics.IncWebhookUpdate(target, "unknown_bot")
		http.NotFound(w, r)
	case errors.Is(err, domain.ErrDeliveryFailed):
		// Telegram refused the reply and the turn was rolled back. A retried
		// delivery would be refused the same way.
		metrics.IncWebhookUpdate(target, "delivery_failed")
		l.Warn().Err(err).Str("target", target).Msg("reply rejected by telegram, update dropped")
		w.WriteHeader(http.StatusOK)
	default:
		metrics.IncWebhookUpdate(target, "error")
		l.Error().Err(err).Str("target", target).Msg("webhook update failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// botKey is the numeric bot id that prefixes every token; it is public, so
// it can name Redis keys without leaking the credential.
func botKey(token string) string {
	if i := strings.IndexByte(token, ':'); i > 0 {
		return token[:i]
	}
	return token
}
