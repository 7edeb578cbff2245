package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/core/domain/quota"
	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/core/ports"
)

// RateLimiterService implements a sliding-window-log limiter on top of
// the quota store. The per-identity window record is read, pruned,
// appended and written back as a whole snapshot; because the store has
// no atomic read-modify-write the ceiling is a soft bound under
// concurrency. On store failure the limiter fails open by default,
// trading strict enforcement for availability.
type RateLimiterService struct {
	store       ports.QuotaStore
	maxRequests int
	window      time.Duration
	keyPrefix   string
	failOpen    bool
	clock       Clock
	logger      *logrus.Logger
}

// RateLimiterConfig groups configuration parameters for the rate limiter.
type RateLimiterConfig struct {
	MaxRequests int
	Window      time.Duration
	KeyPrefix   string
	FailOpen    bool
	Clock       Clock
}

func NewRateLimiterService(store ports.QuotaStore, cfg *RateLimiterConfig, logger *logrus.Logger) *RateLimiterService {
	// Apply defaults
	mr := 100
	w := time.Hour
	kp := "rate_limit"
	fo := true
	var clk Clock
	if cfg != nil {
		if cfg.MaxRequests > 0 {
			mr = cfg.MaxRequests
		}
		if cfg.Window > 0 {
			w = cfg.Window
		}
		if cfg.KeyPrefix != "" {
			kp = cfg.KeyPrefix
		}
		fo = cfg.FailOpen
		clk = cfg.Clock
	}
	return &RateLimiterService{
		store:       store,
		maxRequests: mr,
		window:      w,
		keyPrefix:   kp,
		failOpen:    fo,
		clock:       clockOrDefault(clk),
		logger:      logger,
	}
}

func (s *RateLimiterService) Allow(ctx context.Context, identity string) (quota.Decision, error) {
	now := s.clock()
	key := fmt.Sprintf("%s:%s", s.keyPrefix, identity)

	record, err := s.loadWindow(ctx, key)
	if err != nil {
		return s.storeFailure(identity, "read", err)
	}

	record = record.Prune(now.Add(-s.window))

	if len(record) >= s.maxRequests {
		reset := record.Oldest().Add(s.window)
		return quota.Decision{
			Allowed:    false,
			Limit:      s.maxRequests,
			Remaining:  0,
			RetryAfter: ceilSeconds(reset.Sub(now)),
			Reset:      reset,
		}, nil
	}

	record = append(record, now.UnixMilli())
	if err := s.persistWindow(ctx, key, record); err != nil {
		return s.storeFailure(identity, "write", err)
	}

	return quota.Decision{
		Allowed:   true,
		Limit:     s.maxRequests,
		Remaining: s.maxRequests - len(record),
		Reset:     record.Oldest().Add(s.window),
	}, nil
}

func (s *RateLimiterService) loadWindow(ctx context.Context, key string) (quota.WindowRecord, error) {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return quota.WindowRecord{}, nil
	}
	var record quota.WindowRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		// A corrupt record is replaced on the next write; treat as empty.
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"key": key}).WithError(err).Warn("discarding unreadable rate limit record")
		}
		return quota.WindowRecord{}, nil
	}
	return record, nil
}

func (s *RateLimiterService) persistWindow(ctx context.Context, key string, record quota.WindowRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, key, raw, s.window)
}

// storeFailure resolves a store error into the configured policy:
// fail-open admits the request, fail-closed denies without a retry hint.
// The error is returned either way so callers can observe it.
func (s *RateLimiterService) storeFailure(identity, op string, err error) (quota.Decision, error) {
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"identity": identity, "op": op, "fail_open": s.failOpen}).WithError(err).Error("rate limiter store failure")
	}
	if s.failOpen {
		return quota.Decision{
			Allowed:   true,
			Limit:     s.maxRequests,
			Remaining: s.maxRequests - 1,
			Reset:     s.clock().Add(s.window),
		}, err
	}
	return quota.Decision{
		Allowed: false,
		Limit:   s.maxRequests,
		Reset:   s.clock().Add(s.window),
	}, err
}

func ceilSeconds(d time.Duration) time.Duration {
	secs := (d + time.Second - 1) / time.Second
	if secs < 1 {
		secs = 1
	}
	return secs * time.Second
}

var _ ports.RateLimiterService = (*RateLimiterService)(nil)
