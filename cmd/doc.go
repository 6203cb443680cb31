// Package cmd implements the command-line interface of credis. It provides
// a hierarchical command structure for interacting with a Redis deployment
// supervised by Sentinel through the namespaced client.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for key-value operations (get, set, del, keys, perf, etc.)
//   - lock: Commands for locking operations (acquire, release)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// Every flag can also be set through the environment with the CREDIS_ prefix
// (e.g. CREDIS_MASTER_NAME) or in a .env / .env.local file.
//
// See credis -help for a list of all commands.
package cmd
