package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"telegram-menu-builder/internal/config"
	"telegram-menu-builder/internal/domain/ports/adapter"
	tele "telegram-menu-builder/internal/infra/adapters/telegram"
	pg "telegram-menu-builder/internal/infra/db/postgres"
	"telegram-menu-builder/internal/infra/ratelimit"
)

// newMessenger returns the single outbound path to Telegram. The limiter it
// wraps is the only one in the process.
func newMessenger(cfg *config.Config, logger *zerolog.Logger) adapter.Messenger {
	if cfg.Bot.Noop {
		logger.Warn().Msg("bot.noop set: outbound telegram calls are only logged")
		return tele.NewNoopMessenger(logger)
	}
	limiter := ratelimit.New(cfg.RateLimit.OutboundPerSecond)
	logger.Info().Dur("interval", limiter.Interval()).Msg("outbound rate limiter ready")
	return tele.NewGateway(cfg.Bot, limiter, nil, logger)
}

func openDatabase(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*pgxpool.Pool, error) {
	if cfg.Database.MigrateOnStart {
		if err := pg.MigrateUp(cfg.Database.URL, logger); err != nil {
			return nil, err
		}
	}
	pool, err := pg.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return pool, nil
}
