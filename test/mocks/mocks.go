package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/core/domain/auth"
	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/core/domain/quota"
	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/core/ports"
)

// QuotaStoreMock is a lightweight mock for QuotaStore
type QuotaStoreMock struct {
	GetFn    func(ctx context.Context, key string) ([]byte, bool, error)
	SetFn    func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteFn func(ctx context.Context, key string) error
}

func (m *QuotaStoreMock) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, key)
	}
	return nil, false, nil
}
func (m *QuotaStoreMock) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFn != nil {
		return m.SetFn(ctx, key, value, ttl)
	}
	return nil
}
func (m *QuotaStoreMock) Delete(ctx context.Context, key string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, key)
	}
	return nil
}

// MemoryQuotaStore is a concurrency-safe in-memory QuotaStore for tests.
// TTLs are recorded but not enforced; expiry behavior is covered by the
// redis-backed store tests.
type MemoryQuotaStore struct {
	mu   sync.Mutex
	data map[string][]byte
	TTLs map[string]time.Duration
}

func NewMemoryQuotaStore() *MemoryQuotaStore {
	return &MemoryQuotaStore{
		data: make(map[string][]byte),
		TTLs: make(map[string]time.Duration),
	}
}

func (m *MemoryQuotaStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}
func (m *MemoryQuotaStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.TTLs[key] = ttl
	return nil
}
func (m *MemoryQuotaStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	delete(m.TTLs, key)
	return nil
}

// IdentityGeneratorMock is a lightweight mock for IdentityGenerator
type IdentityGeneratorMock struct {
	GenerateFn func() (string, error)
}

func (m *IdentityGeneratorMock) Generate() (string, error) {
	if m.GenerateFn != nil {
		return m.GenerateFn()
	}
	return "anon_0_mock", nil
}

// CredentialServiceMock is a lightweight mock for CredentialService
type CredentialServiceMock struct {
	IssueFn  func(identity string) (*auth.IssuedCredential, error)
	VerifyFn func(token string) (*auth.Claims, error)
}

func (m *CredentialServiceMock) Issue(identity string) (*auth.IssuedCredential, error) {
	if m.IssueFn != nil {
		return m.IssueFn(identity)
	}
	return &auth.IssuedCredential{Token: "token", Identity: identity}, nil
}
func (m *CredentialServiceMock) Verify(token string) (*auth.Claims, error) {
	if m.VerifyFn != nil {
		return m.VerifyFn(token)
	}
	return nil, fmt.Errorf("not implemented")
}

// RateLimiterServiceMock is a lightweight mock for RateLimiterService
type RateLimiterServiceMock struct {
	AllowFn func(ctx context.Context, identity string) (quota.Decision, error)
}

func (m *RateLimiterServiceMock) Allow(ctx context.Context, identity string) (quota.Decision, error) {
	if m.AllowFn != nil {
		return m.AllowFn(ctx, identity)
	}
	return quota.Decision{Allowed: true}, nil
}

// UsageTrackerMock is a lightweight mock for UsageTracker
type UsageTrackerMock struct {
	RecordFn func(ctx context.Context, identity string)
}

func (m *UsageTrackerMock) Record(ctx context.Context, identity string) {
	if m.RecordFn != nil {
		m.RecordFn(ctx, identity)
	}
}

// GatewayServiceMock is a lightweight mock for GatewayService
type GatewayServiceMock struct {
	IssueCredentialFn  func(ctx context.Context) (*auth.IssuedCredential, error)
	AuthorizeRequestFn func(ctx context.Context, token string) (*ports.AuthorizedRequest, error)
	PolicyFn           func() quota.Policy
}

func (m *GatewayServiceMock) IssueCredential(ctx context.Context) (*auth.IssuedCredential, error) {
	if m.IssueCredentialFn != nil {
		return m.IssueCredentialFn(ctx)
	}
	return nil, fmt.Errorf("not implemented")
}
func (m *GatewayServiceMock) AuthorizeRequest(ctx context.Context, token string) (*ports.AuthorizedRequest, error) {
	if m.AuthorizeRequestFn != nil {
		return m.AuthorizeRequestFn(ctx, token)
	}
	return nil, fmt.Errorf("not implemented")
}
func (m *GatewayServiceMock) Policy() quota.Policy {
	if m.PolicyFn != nil {
		return m.PolicyFn()
	}
	return quota.Policy{MaxRequests: 100, Window: time.Hour}
}

// DownstreamClientMock is a lightweight mock for DownstreamClient
type DownstreamClientMock struct {
	ForwardFn func(ctx context.Context, payload []byte) (*ports.DownstreamResponse, error)
}

func (m *DownstreamClientMock) Forward(ctx context.Context, payload []byte) (*ports.DownstreamResponse, error) {
	if m.ForwardFn != nil {
		return m.ForwardFn(ctx, payload)
	}
	return &ports.DownstreamResponse{StatusCode: 200, Body: []byte(`{}`), ContentType: "application/json"}, nil
}
