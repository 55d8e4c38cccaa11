package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/neocities"
)

// quoteIdentifier safely quotes a SQLite identifier
func quoteIdentifier(name string) string {
	return `"` + name + `"`
}

type TableMigration struct {
	TableName string
	Up        func(ctx context.Context, db *sql.DB) error
	Down      func(ctx context.Context, db *sql.DB) error
}

// getTableMigrations returns all table migrations for the app
func getTableMigrations(tables neocities.Tables) []TableMigration {
	return []TableMigration{
		{
			TableName: tables.Sites,
			Up:        createSitesTable(tables.Sites),
			Down:      dropTable(tables.Sites),
		},
	}
}

func Migrate(ctx context.Context, db *sql.DB, tables neocities.Tables) error {
	migrations := getTableMigrations(tables)

	for _, migration := range migrations {
		if err := migration.Up(ctx, db); err != nil {
			return fmt.Errorf("migrate up %s: %w", migration.TableName, err)
		}
	}

	return nil
}

func DropTables(ctx context.Context, db *sql.DB, tables neocities.Tables) error {
	migrations := getTableMigrations(tables)

	for i := len(migrations) - 1; i >= 0; i-- {
		migration := migrations[i]
		if err := migration.Down(ctx, db); err != nil {
			return fmt.Errorf("migrate down %s: %w", migration.TableName, err)
		}
	}

	return nil
}

func createSitesTable(tableName string) func(context.Context, *sql.DB) error {
	return func(ctx context.Context, db *sql.DB) error {
		quotedTable := quoteIdentifier(tableName)
		indexAPIKey := quoteIdentifier(fmt.Sprintf("idx_%s_api_key", tableName))

		// api_key is NULL until first requested, so the unique index only
		// covers issued keys.
		createTableSQL := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				sitename TEXT NOT NULL PRIMARY KEY,
				password_hash TEXT NOT NULL,
				api_key TEXT,
				views INTEGER NOT NULL DEFAULT 0,
				hits INTEGER NOT NULL DEFAULT 0,
				domain TEXT NOT NULL DEFAULT '',
				tags TEXT NOT NULL DEFAULT '[]',
				latest_ipfs_hash TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				last_updated TEXT
			)
		`, quotedTable)

		if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
			return fmt.Errorf("create table: %w", err)
		}

		indexSQL := fmt.Sprintf(`
			CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (api_key)
		`, indexAPIKey, quotedTable)

		if _, err := db.ExecContext(ctx, indexSQL); err != nil {
			return fmt.Errorf("create index api_key: %w", err)
		}

		return nil
	}
}

func dropTable(tableName string) func(context.Context, *sql.DB) error {
	return func(ctx context.Context, db *sql.DB) error {
		quotedTable := quoteIdentifier(tableName)
		dropSQL := fmt.Sprintf("DROP TABLE IF EXISTS %s", quotedTable)

		_, err := db.ExecContext(ctx, dropSQL)
		return err
	}
}
