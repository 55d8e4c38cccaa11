package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sagarc03/neocities/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "neocities-devserver",
	Short:   "Local Neocities-compatible API server",
	Long: `neocities-devserver serves the Neocities hosting API from local disk.

Point the neocities CLI at it with:
  neocities --base-url http://localhost:5709/api --username demo --password secret

Uploaded sites are served at http://localhost:5709/site/{sitename}/.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var configFiles []string
		if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
			configFiles = append(configFiles, configFile)
		}

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		setupLogging(cfg.Log)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./neocities-dev.yaml)")
	rootCmd.PersistentFlags().String("db-dsn", "", "sqlite database path (default: neocities-dev.db, env: NEOCITIES_DEV_DATABASE_DSN)")
	rootCmd.PersistentFlags().String("storage-path", "", "directory holding the sites (default: ./sites, env: NEOCITIES_DEV_STORAGE_PATH)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: NEOCITIES_DEV_LOG_LEVEL)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(siteCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
