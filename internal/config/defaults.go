// Package config provides centralized configuration for Vanessa.
// All default values are defined here so the CLI, the server and the
// session share a single source of truth.
package config

import "time"

// EnvPrefix namespaces environment overrides, e.g. VANESSA_LLM_PROVIDER.
const EnvPrefix = "VANESSA"

// Storage defaults
const (
	// DefaultStorageDriver is the default key-value backend
	DefaultStorageDriver = "file"
)

// Reconciliation defaults
const (
	// DefaultReconcileMaxAttempts is the default number of oracle calls per update
	DefaultReconcileMaxAttempts = 1

	// DefaultReconcileTimeout bounds a single oracle call
	DefaultReconcileTimeout = 60 * time.Second
)

// DefaultServerAddr is the default listen address for `vanessa serve`
const DefaultServerAddr = "127.0.0.1:8787"

// DefaultServerOrigins are the dev-server origins allowed by CORS
var DefaultServerOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
