package database

import (
	"context"
	"fmt"

	"github.com/sagarc03/neocities"
	"github.com/sagarc03/neocities/database/sqlite"
)

// Database provides database operations for the site account store.
type Database interface {
	// Ping verifies the database connection is alive.
	Ping(ctx context.Context) error

	// Migrate creates the required tables.
	Migrate(ctx context.Context) error

	// Validate checks that the schema matches the expected structure.
	Validate(ctx context.Context) error

	// GetRepo returns the SiteRepo backed by this database.
	GetRepo() neocities.SiteRepo

	// Close closes the database connection.
	Close() error
}

// Config holds the configuration for connecting to the account store.
type Config struct {
	// Type specifies the database type. Only "sqlite" is supported.
	Type string `mapstructure:"type" validate:"required,oneof=sqlite"`
	// DSN is the data source name, a file path or ":memory:"
	DSN string `mapstructure:"dsn" validate:"required"`
	// Tables holds the table names
	Tables neocities.Tables `mapstructure:"tables"`
}

// Connect opens the configured database. It does not migrate or validate;
// callers run Migrate and Validate explicitly.
func Connect(ctx context.Context, cfg Config) (Database, error) {
	switch cfg.Type {
	case "sqlite":
		if err := cfg.Tables.Validate(); err != nil {
			return nil, fmt.Errorf("connect: %w", err)
		}
		db, err := sqlite.Connect(ctx, cfg.DSN, cfg.Tables)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %q", cfg.Type)
	}
}

// Open connects, migrates when migrate is set, validates the schema and
// returns the ready repo. The returned cleanup closes the connection.
func Open(ctx context.Context, cfg Config, migrate bool) (neocities.SiteRepo, func(), error) {
	db, err := Connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() { _ = db.Close() }

	if err = db.Ping(ctx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	if migrate {
		if err = db.Migrate(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
	}

	if err = db.Validate(ctx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("validate database schema: %w", err)
	}

	return db.GetRepo(), cleanup, nil
}
