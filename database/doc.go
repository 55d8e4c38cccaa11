// Package database connects the dev server to its site account store.
//
// SQLite (modernc.org/sqlite, no cgo) is the only backend. A file DSN keeps
// accounts across restarts and ":memory:" suits tests.
//
// # Usage
//
//	cfg := database.Config{
//	    Type:   "sqlite",
//	    DSN:    "neocities-dev.db",
//	    Tables: neocities.Tables{Sites: "sites"},
//	}
//
//	repo, cleanup, err := database.Open(ctx, cfg, true)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cleanup()
//
// Open pings the database, runs migrations when asked, validates the schema
// and returns a ready-to-use neocities.SiteRepo. Connect returns the lower
// level Database for callers that drive those steps themselves.
package database
