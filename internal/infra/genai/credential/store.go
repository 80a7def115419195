package credential

import "context"

// Store is the external configuration storage the pool reloads from.
// Implemented by the Redis client; tests use an in-memory store.
type Store interface {
	// KeyList returns the configured API key list. Missing configuration is
	// reported as an empty list, not an error.
	KeyList(ctx context.Context) ([]string, error)

	// LegacyKey returns the single-key configuration from older deployments.
	// Only consulted when the key list is empty.
	LegacyKey(ctx context.Context) (string, error)
}
