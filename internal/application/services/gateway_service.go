package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/core/domain/auth"
	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/core/domain/quota"
	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/core/ports"
)

// GatewayService composes identity generation, credential signing, rate
// limiting and usage metering behind the two operations the HTTP layer
// needs: issue a credential, and authorize one request under it.
type GatewayService struct {
	identities   ports.IdentityGenerator
	credentials  ports.CredentialService
	limiter      ports.RateLimiterService
	usage        ports.UsageTracker
	policy       quota.Policy
	meterTimeout time.Duration
	logger       *logrus.Logger
}

func NewGatewayService(
	identities ports.IdentityGenerator,
	credentials ports.CredentialService,
	limiter ports.RateLimiterService,
	usageTracker ports.UsageTracker,
	policy quota.Policy,
	meterTimeout time.Duration,
	logger *logrus.Logger,
) *GatewayService {
	if meterTimeout <= 0 {
		meterTimeout = 10 * time.Second
	}
	return &GatewayService{
		identities:   identities,
		credentials:  credentials,
		limiter:      limiter,
		usage:        usageTracker,
		policy:       policy,
		meterTimeout: meterTimeout,
		logger:       logger,
	}
}

func (s *GatewayService) IssueCredential(ctx context.Context) (*auth.IssuedCredential, error) {
	identity, err := s.identities.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate identity: %w", err)
	}

	cred, err := s.credentials.Issue(identity)
	if err != nil {
		return nil, fmt.Errorf("failed to issue credential: %w", err)
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"identity": identity, "expires_at": cred.ExpiresAt}).Info("issued anonymous credential")
	}
	return cred, nil
}

func (s *GatewayService) AuthorizeRequest(ctx context.Context, token string) (*ports.AuthorizedRequest, error) {
	claims, err := s.credentials.Verify(token)
	if err != nil {
		return nil, err
	}
	identity := claims.UserID

	decision, rlErr := s.limiter.Allow(ctx, identity)
	if rlErr != nil && s.logger != nil {
		// The limiter already resolved the error into its policy; the
		// decision stands regardless.
		s.logger.WithFields(logrus.Fields{"identity": identity}).WithError(rlErr).Warn("rate limiter degraded")
	}

	if decision.Allowed {
		s.meterAsync(identity)
	}

	return &ports.AuthorizedRequest{Identity: identity, Quota: decision}, nil
}

func (s *GatewayService) Policy() quota.Policy {
	return s.policy
}

// meterAsync records usage off the request path. The admit decision is
// already made; a detached context keeps a client abort or a slow store
// from affecting the response.
func (s *GatewayService) meterAsync(identity string) {
	if s.usage == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.meterTimeout)
		defer cancel()
		s.usage.Record(ctx, identity)
	}()
}

var _ ports.GatewayService = (*GatewayService)(nil)
