// Package config provides configuration loading and validation for the
// Neocities dev server.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right,
//     ./neocities-dev.yaml when none is given
//  3. Environment variables (NEOCITIES_DEV_ prefix)
//  4. CLI flags that were explicitly set
//
// # Usage
//
//	cfg, err := config.Load([]string{"neocities-dev.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with NEOCITIES_DEV_ prefix:
//   - server.port → NEOCITIES_DEV_SERVER_PORT
//   - storage.path → NEOCITIES_DEV_STORAGE_PATH
//   - database.dsn → NEOCITIES_DEV_DATABASE_DSN
//
// # Configuration Structure
//
// The Config struct contains:
//   - Server: port, max_upload_size and auto_migrate
//   - Service: bcrypt_cost for site passwords
//   - Database: type (sqlite), DSN, and table names
//   - Storage: root directory of the hosted sites
//   - Auth: seed site accounts, inline or from a JSON file
//   - CORS: cross-origin resource sharing settings
//   - Log: logging level and handler (dev or prod)
package config
