package main

import (
	"github.com/spf13/cobra"

	pg "telegram-menu-builder/internal/infra/db/postgres"
)

func newMigrateCmd(gf *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(gf)
			if err != nil {
				return err
			}
			return pg.MigrateUp(cfg.Database.URL, logger)
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(gf)
			if err != nil {
				return err
			}
			return pg.MigrateDown(cfg.Database.URL, steps, logger)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.AddCommand(down)
	return cmd
}
