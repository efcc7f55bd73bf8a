package keyval

import (
	"context"
	"time"
)

// Store is a TTL-capable key/value store. Every coordination invariant of the
// credential subsystem reduces to this contract: GetDel must be atomic at the
// store level so concurrent consumers of the same key observe exactly one hit.
//
// Absence is reported through the ok return, never through an error. An error
// always means the store itself misbehaved (unreachable, timed out), and
// callers must not treat it as "not found".
type Store interface {
	// Set writes value under key with the given TTL. A zero TTL keeps the
	// key until deleted.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// SetNX writes only when the key is absent and reports whether it did.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// GetDel atomically reads and removes the key.
	GetDel(ctx context.Context, key string) (string, bool, error)

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Scan returns all keys with the given prefix.
	Scan(ctx context.Context, prefix string) ([]string, error)
}
