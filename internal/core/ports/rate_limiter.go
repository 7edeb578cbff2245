package ports

import (
	"context"

	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/core/domain/quota"
)

// RateLimiterService enforces a sliding-window request quota per
// identity. Implementations MUST be safe for concurrent use, but the
// enforced ceiling is a soft bound: the backing store has no atomic
// read-modify-write, so concurrent requests for one identity can race
// past each other by a small amount.
type RateLimiterService interface {
	// Allow consumes one request unit for the identity and reports the
	// decision. When the backing store fails and the limiter is
	// configured fail-open, the returned decision allows the request
	// and the store error is returned alongside for observability.
	Allow(ctx context.Context, identity string) (quota.Decision, error)
}
