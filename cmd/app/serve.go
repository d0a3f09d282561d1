package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"telegram-menu-builder/internal/infra/api"
	pg "telegram-menu-builder/internal/infra/db/postgres"
	"telegram-menu-builder/internal/infra/metrics"
	red "telegram-menu-builder/internal/infra/redis"
	"telegram-menu-builder/internal/infra/scheduler"
	"telegram-menu-builder/internal/infra/web"
	"telegram-menu-builder/internal/usecase"
)

func newServeCmd(gf *globalFlags) *cobra.Command {
	var skipWebhooks bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve webhooks for the root bot and every registered bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), gf, skipWebhooks)
		},
	}
	cmd.Flags().BoolVar(&skipWebhooks, "skip-webhooks", false, "do not re-register webhooks on startup")
	return cmd
}

func runServe(ctx context.Context, gf *globalFlags, skipWebhooks bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := loadConfig(gf)
	if err != nil {
		return err
	}
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()
	poolStats := scheduler.NewScheduler("db_pool_stats", 15*time.Second, poolStatsJob(pool), logger)
	poolStats.Start(ctx)
	defer poolStats.Stop()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redisClient.Close()
	locker := red.NewLocker(redisClient)
	floodGuard := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	tenantRepo := pg.NewTenantRepoCacheDecorator(pg.NewTenantRepo(pool), redisClient, cfg.Redis.TTL, logger)
	endUserRepo := pg.NewEndUserRepo(pool)
	menuRepo := pg.NewMenuRepo(pool)
	actionRepo := pg.NewActionRepo(pool)

	// ---- Telegram ----
	bot := newMessenger(cfg, logger)

	// ---- Use cases ----
	hooks := usecase.NewWebhookUseCase(tenantRepo, bot, cfg.Bot.PublicURL, cfg.Bot.Token, logger)
	tenantUC := usecase.NewTenantUseCase(tenantRepo, menuRepo, actionRepo, tm, bot, hooks, logger)
	navUC := usecase.NewNavigationUseCase(tenantRepo, endUserRepo, menuRepo, actionRepo, tm, bot, locker, cfg.Redis.LockTTL, logger)
	rootUC := usecase.NewRootBotUseCase(tenantUC, bot, logger)

	if !skipWebhooks {
		failed, err := hooks.RegisterAll(ctx)
		if err != nil {
			return fmt.Errorf("register webhooks: %w", err)
		}
		if failed > 0 {
			logger.Warn().Int("failed", failed).Msg("some webhooks could not be registered")
		}
	}

	// ---- HTTP ----
	front := api.NewServer(cfg.Bot.Token, rootUC, navUC, floodGuard, cfg.RateLimit.InboundPerMinute, logger)
	admin := web.NewServer(tenantUC, hooks, web.NewAuthManager(cfg.Admin, !cfg.Runtime.Dev), logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           api.NewRouter(logger, cfg.HTTP.RequestTimeout, front.Routes, admin.Routes),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	// ---- Graceful shutdown ----
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown requested")
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.RequestTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func poolStatsJob(pool *pgxpool.Pool) scheduler.Job {
	return func(context.Context) error {
		s := pool.Stat()
		metrics.SetDBPoolStats(s.TotalConns(), s.IdleConns(), s.AcquiredConns())
		return nil
	}
}
