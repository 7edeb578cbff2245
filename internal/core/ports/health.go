package ports

import "context"

// HealthChecker reports the availability of one external dependency of
// the proxy, such as the quota store or the downstream service.
type HealthChecker interface {
	// Name identifies the dependency in the health report.
	Name() string
	// Check returns nil when the dependency is reachable.
	Check(ctx context.Context) error
}
