package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers the outcome of write requests keyed by a
// client-supplied Idempotency-Key, so a retried request replays the
// stored response instead of running again.
type IdempotencyStore interface {
	// Reserve claims key for an in-flight request.
	// Returns true if the key was newly claimed, false if another request holds it or finished it
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Complete stores the final response for a reserved key
	Complete(ctx context.Context, key string, response []byte, ttl time.Duration) error

	// Lookup returns the stored response for key, if the request finished
	Lookup(ctx context.Context, key string) ([]byte, bool, error)

	// Release drops a reservation so the request can be retried (used when the handler failed)
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a completed response is replayed
	// Default: 24 hours
	TTL time.Duration

	// Enabled determines whether idempotency checking is enabled
	// Default: true
	Enabled bool
}
