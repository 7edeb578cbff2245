// Package quota holds the rate limiting domain types: the policy under
// which an identity is limited and the decision produced for a single
// authorize attempt.
package quota

import "time"

// Policy is the static quota configuration applied to every identity.
type Policy struct {
	MaxRequests int
	Window      time.Duration
}

// Decision is the outcome of consuming one quota unit for an identity.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration // whole seconds; zero when allowed
	Reset      time.Time     // when the oldest counted request leaves the window
}

// WindowRecord is a per-identity log of request timestamps in
// milliseconds since epoch, ordered oldest first. It is the unit
// persisted to the quota store as a JSON array.
type WindowRecord []int64

// Prune returns the record restricted to timestamps newer than cutoff.
func (r WindowRecord) Prune(cutoff time.Time) WindowRecord {
	cutoffMs := cutoff.UnixMilli()
	out := make(WindowRecord, 0, len(r))
	for _, ts := range r {
		if ts > cutoffMs {
			out = append(out, ts)
		}
	}
	return out
}

// Oldest returns the earliest timestamp in the record. The record must
// be non-empty.
func (r WindowRecord) Oldest() time.Time {
	min := r[0]
	for _, ts := range r[1:] {
		if ts < min {
			min = ts
		}
	}
	return time.UnixMilli(min)
}
