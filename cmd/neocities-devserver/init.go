package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/neocities/config"
	"github.com/sagarc03/neocities/keybackend"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database and storage directory and seed accounts",
	Long: `Create the site account table, the storage directory, and every seed
account listed under auth.sites. Running it again only adds accounts that
don't exist yet.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	service, cleanup, err := openService(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer cleanup()

	accounts, err := keybackend.NewAccountStore(cfg.Auth.Sites)
	if err != nil {
		return fmt.Errorf("load seed accounts: %w", err)
	}

	created, err := accounts.Seed(ctx, service)
	if err != nil {
		return err
	}

	slog.Info("initialization complete", "storage", cfg.Storage.Path, "sites_created", created)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Initialized. %d site(s) created.\n", created)
	return nil
}
