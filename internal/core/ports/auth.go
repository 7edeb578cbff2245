package ports

import (
	"context"

	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/core/domain/auth"
	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/core/domain/quota"
)

// IdentityGenerator produces unique anonymous identifiers.
type IdentityGenerator interface {
	// Generate returns a fresh identity. It fails only if the system
	// random source is exhausted, which callers should treat as fatal.
	Generate() (string, error)
}

// CredentialService signs and verifies self-contained anonymous bearer
// tokens. The service is stateless: no issued token is retained.
type CredentialService interface {
	// Issue signs a credential binding identity for the configured TTL.
	Issue(identity string) (*auth.IssuedCredential, error)
	// Verify checks shape, signature, expiry and kind, in that order,
	// and returns the embedded claims. Failures are the sentinels in
	// the auth package.
	Verify(token string) (*auth.Claims, error)
}

// GatewayService composes credential issuance with per-request
// authorization and metering.
type GatewayService interface {
	// IssueCredential mints a new identity and a signed credential for it.
	IssueCredential(ctx context.Context) (*auth.IssuedCredential, error)
	// AuthorizeRequest verifies the bearer token and consumes one quota
	// unit for the embedded identity. A verification failure is returned
	// as an error; a throttled request is a nil error with a denying
	// decision. Usage metering for admitted requests happens off the
	// request path and cannot affect the decision.
	AuthorizeRequest(ctx context.Context, token string) (*AuthorizedRequest, error)
	// Policy reports the static quota policy for client-facing metadata.
	Policy() quota.Policy
}

// AuthorizedRequest is the outcome of a successful credential check.
type AuthorizedRequest struct {
	Identity string
	Quota    quota.Decision
}
