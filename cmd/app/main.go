package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"telegram-menu-builder/internal/config"
	"telegram-menu-builder/internal/infra/logging"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

type globalFlags struct {
	configPath string
	dev        bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var gf globalFlags
	cmd := &cobra.Command{
		Use:           "menubuilder",
		Short:         "Multi-tenant Telegram menu builder",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&gf.configPath, "config", "config.yaml", "path to YAML config file (empty: environment only)")
	cmd.PersistentFlags().BoolVar(&gf.dev, "dev", false, "enable developer mode (console logs)")

	cmd.AddCommand(newServeCmd(&gf))
	cmd.AddCommand(newMigrateCmd(&gf))
	cmd.AddCommand(newWebhooksCmd(&gf))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func loadConfig(gf *globalFlags) (*config.Config, *zerolog.Logger, error) {
	cfg, err := config.Load(gf.configPath, gf.dev)
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}
	return cfg, logger, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", version, commit)
		},
	}
}
