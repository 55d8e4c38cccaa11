package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sagarc03/neocities"
	"github.com/sagarc03/neocities/config"
	"github.com/sagarc03/neocities/database"
	"github.com/sagarc03/neocities/filesystem"
)

// openService wires the account store and the site storage into a
// SiteService. migrate forces table creation regardless of
// server.auto_migrate. The returned cleanup closes both.
func openService(ctx context.Context, cfg *config.Config, migrate bool) (*neocities.SiteService, func(), error) {
	repo, closeDB, err := database.Open(ctx, cfg.Database, migrate || cfg.Server.AutoMigrate)
	if err != nil {
		return nil, nil, err
	}

	if err = os.MkdirAll(cfg.Storage.Path, 0o750); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("create storage directory: %w", err)
	}

	root, err := os.OpenRoot(cfg.Storage.Path)
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("open storage root: %w", err)
	}

	service := neocities.NewSiteService(repo, filesystem.NewFileStorage(root), neocities.ServiceConfig{
		BcryptCost: cfg.Service.BcryptCost,
	})

	cleanup := func() {
		_ = root.Close()
		closeDB()
	}

	return service, cleanup, nil
}
