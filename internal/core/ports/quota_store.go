package ports

import (
	"context"
	"time"
)

// QuotaStore defines the key-value contract backing rate limiting and
// usage tracking. Implementations are eventually consistent and offer
// no atomic read-modify-write; callers must tolerate lost updates under
// concurrency and should degrade gracefully on error.
type QuotaStore interface {
	// Get returns the raw bytes for key. ok=false if not found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for key with TTL (0 or negative means no expiration).
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the key; absence is not an error.
	Delete(ctx context.Context, key string) error
}
