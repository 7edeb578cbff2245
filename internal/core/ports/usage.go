package ports

import "context"

// UsageTracker maintains informational per-identity request counters.
// Recording is best-effort: storage failures are logged and swallowed
// because usage numbers are never authoritative for access control.
type UsageTracker interface {
	// Record counts one admitted request for the identity and prunes
	// daily buckets past the retention horizon.
	Record(ctx context.Context, identity string)
}
