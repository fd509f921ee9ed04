// Package config provides configuration loading and validation for relay.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (RELAY_ prefix)
//  4. CLI flags that were explicitly set
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
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
// All config keys map to environment variables with RELAY_ prefix:
//   - server.port → RELAY_SERVER_PORT
//   - storage.path → RELAY_STORAGE_PATH
//   - auth.secret → RELAY_AUTH_SECRET
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Base path must start and end with "/"
//   - Auth secret is required
//   - Chunk size must be positive
//   - Log level must be debug, info, warn, or error
package config
