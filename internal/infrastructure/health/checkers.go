package health

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/sony/gobreaker"

	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/core/ports"
)

// redisHealthChecker wraps the redis client for health checks.
type redisHealthChecker struct{ client *redis.Client }

func (r *redisHealthChecker) Name() string                    { return "redis" }
func (r *redisHealthChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }

// NewRedisHealthChecker creates a health checker for Redis.
func NewRedisHealthChecker(client *redis.Client) ports.HealthChecker {
	return &redisHealthChecker{client: client}
}

// breakerState is satisfied by the downstream client.
type breakerState interface {
	State() gobreaker.State
}

// downstreamHealthChecker reports unhealthy while the downstream
// circuit is open. It deliberately does not probe the endpoint itself;
// the breaker already reflects recent call outcomes.
type downstreamHealthChecker struct{ client breakerState }

func (d *downstreamHealthChecker) Name() string { return "downstream" }
func (d *downstreamHealthChecker) Check(ctx context.Context) error {
	if d.client.State() == gobreaker.StateOpen {
		return fmt.Errorf("downstream circuit is open")
	}
	return nil
}

// NewDownstreamHealthChecker creates a health checker for the proxied endpoint.
func NewDownstreamHealthChecker(client breakerState) ports.HealthChecker {
	return &downstreamHealthChecker{client: client}
}
