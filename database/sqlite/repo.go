// Package sqlite implements the site repo interface using SQLite
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sagarc03/neocities"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type repo struct {
	db        *sql.DB
	tableName string
}

const siteColumns = `sitename, password_hash, api_key, views, hits, domain, tags, latest_ipfs_hash, created_at, last_updated`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSite(row rowScanner) (neocities.Site, error) {
	var s neocities.Site
	var apiKey, lastUpdated sql.NullString
	var tags, createdAt string

	err := row.Scan(
		&s.Sitename, &s.PasswordHash, &apiKey, &s.Views, &s.Hits,
		&s.Domain, &tags, &s.IPFSHash, &createdAt, &lastUpdated,
	)
	if err != nil {
		return neocities.Site{}, err
	}

	s.APIKey = apiKey.String

	if err := json.Unmarshal([]byte(tags), &s.Tags); err != nil {
		return neocities.Site{}, fmt.Errorf("parse tags: %w", err)
	}

	s.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return neocities.Site{}, fmt.Errorf("parse created_at: %w", err)
	}

	if lastUpdated.Valid {
		t, err := time.Parse(time.RFC3339Nano, lastUpdated.String)
		if err != nil {
			return neocities.Site{}, fmt.Errorf("parse last_updated: %w", err)
		}
		s.LastUpdated = &t
	}

	return s, nil
}

func (r *repo) Get(ctx context.Context, sitename string) (neocities.Site, error) {
	return r.getBy(ctx, "sitename", sitename)
}

func (r *repo) GetByAPIKey(ctx context.Context, apiKey string) (neocities.Site, error) {
	if apiKey == "" {
		return neocities.Site{}, neocities.ErrNotFound
	}
	return r.getBy(ctx, "api_key", apiKey)
}

// getBy looks a site up by a fixed column name, never user input.
func (r *repo) getBy(ctx context.Context, column, value string) (neocities.Site, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table and column names are validated
		`SELECT %s FROM %s WHERE %s = ?`, siteColumns, r.tableName, column)

	s, err := scanSite(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return neocities.Site{}, neocities.ErrNotFound
		}
		return neocities.Site{}, fmt.Errorf("get: %w", err)
	}
	return s, nil
}

func (r *repo) Create(ctx context.Context, site neocities.Site) (neocities.Site, error) {
	if site.Tags == nil {
		site.Tags = []string{}
	}
	tags, err := json.Marshal(site.Tags)
	if err != nil {
		return neocities.Site{}, fmt.Errorf("create: encode tags: %w", err)
	}

	var apiKey sql.NullString
	if site.APIKey != "" {
		apiKey = sql.NullString{String: site.APIKey, Valid: true}
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (sitename, password_hash, api_key, views, hits, domain, tags, latest_ipfs_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, r.tableName)

	_, err = r.db.ExecContext(ctx, query,
		site.Sitename, site.PasswordHash, apiKey, site.Views, site.Hits,
		site.Domain, string(tags), site.IPFSHash, now,
	)
	if err != nil {
		if constraintCode(err) == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
			return neocities.Site{}, neocities.ErrSiteExists
		}
		if constraintCode(err) == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return neocities.Site{}, fmt.Errorf("create: %w: api key already in use", neocities.ErrInvalidInput)
		}
		return neocities.Site{}, fmt.Errorf("create: %w", err)
	}

	site.CreatedAt, _ = time.Parse(time.RFC3339Nano, now)
	site.LastUpdated = nil
	return site, nil
}

func (r *repo) List(ctx context.Context) ([]neocities.Site, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT %s FROM %s ORDER BY sitename`, siteColumns, r.tableName)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sites := []neocities.Site{}
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, fmt.Errorf("list: scan: %w", err)
		}
		sites = append(sites, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: rows: %w", err)
	}

	return sites, nil
}

func (r *repo) SetAPIKey(ctx context.Context, sitename, apiKey string) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`UPDATE %s SET api_key = ? WHERE sitename = ?`, r.tableName)

	result, err := r.db.ExecContext(ctx, query, apiKey, sitename)
	if err != nil {
		if constraintCode(err) == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return fmt.Errorf("set api key: %w: api key already in use", neocities.ErrInvalidInput)
		}
		return fmt.Errorf("set api key: %w", err)
	}
	return requireRow(result, "set api key")
}

func (r *repo) Touch(ctx context.Context, sitename string, at time.Time) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`UPDATE %s SET last_updated = ? WHERE sitename = ?`, r.tableName)

	result, err := r.db.ExecContext(ctx, query, at.UTC().Format(time.RFC3339Nano), sitename)
	if err != nil {
		return fmt.Errorf("touch: %w", err)
	}
	return requireRow(result, "touch")
}

func (r *repo) RecordHit(ctx context.Context, sitename string) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`UPDATE %s SET hits = hits + 1 WHERE sitename = ?`, r.tableName)

	result, err := r.db.ExecContext(ctx, query, sitename)
	if err != nil {
		return fmt.Errorf("record hit: %w", err)
	}
	return requireRow(result, "record hit")
}

func requireRow(result sql.Result, op string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}

	if rowsAffected == 0 {
		return neocities.ErrNotFound
	}
	return nil
}

func constraintCode(err error) int {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()
	}
	return 0
}
