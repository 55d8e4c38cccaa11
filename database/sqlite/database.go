package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/neocities"

	_ "modernc.org/sqlite" // SQLite driver
)

// database provides SQLite database operations.
type database struct {
	db     *sql.DB
	tables neocities.Tables
}

// Connect opens a SQLite database. Tables should be validated before
// calling Connect.
//
// The pool is limited to one connection: every connection to ":memory:"
// opens its own empty database, and sqlite serialises writers anyway.
func Connect(ctx context.Context, dsn string, tables neocities.Tables) (*database, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	return &database{
		db:     db,
		tables: tables,
	}, nil
}

// Ping verifies the database connection is alive.
func (d *database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate runs database migrations to create required tables.
func (d *database) Migrate(ctx context.Context) error {
	return Migrate(ctx, d.db, d.tables)
}

// Validate checks that the database schema matches expected structure.
func (d *database) Validate(ctx context.Context) error {
	return ValidateSchema(ctx, d.db, d.tables)
}

// GetRepo returns the SiteRepo for database operations.
func (d *database) GetRepo() neocities.SiteRepo {
	return &repo{db: d.db, tableName: d.tables.Sites}
}

// Close closes the database connection.
func (d *database) Close() error {
	return d.db.Close()
}
