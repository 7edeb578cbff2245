package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/core/domain/usage"
	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/core/ports"
)

// UsageTrackerService keeps per-identity request counters in the quota
// store. Every failure is logged and swallowed: usage numbers are
// informational and must never affect an admit decision already made.
// The record is stored without TTL, preserving the original unbounded
// retention semantics; only daily buckets are pruned.
type UsageTrackerService struct {
	store     ports.QuotaStore
	keyPrefix string
	retention time.Duration
	clock     Clock
	logger    *logrus.Logger
}

// UsageTrackerConfig groups configuration parameters for the tracker.
type UsageTrackerConfig struct {
	KeyPrefix string
	Retention time.Duration
	Clock     Clock
}

func NewUsageTrackerService(store ports.QuotaStore, cfg *UsageTrackerConfig, logger *logrus.Logger) *UsageTrackerService {
	// Apply defaults
	kp := "user_stats"
	rt := 720 * time.Hour
	var clk Clock
	if cfg != nil {
		if cfg.KeyPrefix != "" {
			kp = cfg.KeyPrefix
		}
		if cfg.Retention > 0 {
			rt = cfg.Retention
		}
		clk = cfg.Clock
	}
	return &UsageTrackerService{
		store:     store,
		keyPrefix: kp,
		retention: rt,
		clock:     clockOrDefault(clk),
		logger:    logger,
	}
}

func (s *UsageTrackerService) Record(ctx context.Context, identity string) {
	now := s.clock()
	key := fmt.Sprintf("%s:%s", s.keyPrefix, identity)

	record := s.loadRecord(ctx, key, now)
	record.Touch(now)
	record.Prune(now.Add(-s.retention))

	raw, err := json.Marshal(record)
	if err != nil {
		s.logFailure(identity, "encode", err)
		return
	}
	if err := s.store.Set(ctx, key, raw, 0); err != nil {
		s.logFailure(identity, "write", err)
	}
}

func (s *UsageTrackerService) loadRecord(ctx context.Context, key string, now time.Time) *usage.Record {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		s.logFailure(key, "read", err)
		return usage.NewRecord(now)
	}
	if !ok {
		return usage.NewRecord(now)
	}
	var record usage.Record
	if err := json.Unmarshal(raw, &record); err != nil {
		s.logFailure(key, "decode", err)
		return usage.NewRecord(now)
	}
	return &record
}

func (s *UsageTrackerService) logFailure(subject, op string, err error) {
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"subject": subject, "op": op}).WithError(err).Warn("usage tracking failure ignored")
	}
}

var _ ports.UsageTracker = (*UsageTrackerService)(nil)
