package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// QuotaStore implements ports.QuotaStore using a Redis client. Redis
// gives the per-key TTL semantics the limiter and tracker rely on, and
// nothing more: reads and writes are independent operations, so callers
// own the lost-update risk.
type QuotaStore struct {
	r redis.Cmdable
	// optional key prefix to namespace entries
	prefix string
}

// NewQuotaStore creates a new Redis-backed quota store.
func NewQuotaStore(r redis.Cmdable, prefix string) *QuotaStore {
	return &QuotaStore{r: r, prefix: prefix}
}

func (s *QuotaStore) namespaced(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

// Get implements QuotaStore.Get.
func (s *QuotaStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ns := s.namespaced(key)
	val, err := s.r.Get(ctx, ns).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set implements QuotaStore.Set. A non-positive ttl stores without expiry.
func (s *QuotaStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ns := s.namespaced(key)
	if ttl <= 0 {
		ttl = 0
	}
	return s.r.Set(ctx, ns, value, ttl).Err()
}

// Delete implements QuotaStore.Delete.
func (s *QuotaStore) Delete(ctx context.Context, key string) error {
	ns := s.namespaced(key)
	return s.r.Del(ctx, ns).Err()
}
