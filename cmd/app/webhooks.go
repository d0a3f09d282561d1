package main

import (
	"fmt"

	"github.com/spf13/cobra"

	pg "telegram-menu-builder/internal/infra/db/postgres"
	"telegram-menu-builder/internal/usecase"
)

func newWebhooksCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "webhooks",
		Short: "Point the root bot and every registered bot at this deployment",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, logger, err := loadConfig(gf)
			if err != nil {
				return err
			}
			pool, err := openDatabase(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			hooks := usecase.NewWebhookUseCase(pg.NewTenantRepo(pool), newMessenger(cfg, logger), cfg.Bot.PublicURL, cfg.Bot.Token, logger)
			failed, err := hooks.RegisterAll(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "webhooks registered, %d failed\n", failed)
			if failed > 0 {
				return fmt.Errorf("%d webhook(s) failed", failed)
			}
			return nil
		},
	}
}
