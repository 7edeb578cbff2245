// Package usage holds the per-identity metering record. Usage numbers
// are informational only and never feed back into access control.
package usage

import "time"

// DayKeyLayout is the calendar-date key format for daily buckets (UTC).
const DayKeyLayout = "2006-01-02"

// Record tracks cumulative and per-day request counts for one identity.
// It is persisted as a whole JSON snapshot; every write replaces the
// previous one.
type Record struct {
	CreatedAt     time.Time        `json:"createdAt"`
	TotalRequests int64            `json:"totalRequests"`
	LastRequestAt time.Time        `json:"lastRequestAt"`
	DailyRequests map[string]int64 `json:"dailyRequests"`
}

// NewRecord initializes an empty record for an identity first seen at now.
func NewRecord(now time.Time) *Record {
	return &Record{
		CreatedAt:     now,
		DailyRequests: make(map[string]int64),
	}
}

// DayKey returns the UTC calendar-date bucket key for t.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayKeyLayout)
}

// Touch counts one request observed at now.
func (r *Record) Touch(now time.Time) {
	if r.DailyRequests == nil {
		r.DailyRequests = make(map[string]int64)
	}
	r.TotalRequests++
	r.LastRequestAt = now
	r.DailyRequests[DayKey(now)]++
}

// Prune drops daily buckets dated before horizon. Keys that do not
// parse as calendar dates are dropped too; they can only come from a
// corrupt record.
func (r *Record) Prune(horizon time.Time) {
	cutoff := DayKey(horizon)
	for key := range r.DailyRequests {
		if _, err := time.Parse(DayKeyLayout, key); err != nil {
			delete(r.DailyRequests, key)
			continue
		}
		if key < cutoff {
			delete(r.DailyRequests, key)
		}
	}
}
