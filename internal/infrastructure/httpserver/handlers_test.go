package httpserver_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/core/domain/auth"
	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/core/domain/quota"
	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/core/ports"
	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/infrastructure/httpserver"
	tmocks "github.com/king-nomura/cloudflare-workers-api-proxy/test/mocks"
)

func newTestServer(gateway ports.GatewayService, downstreamClient ports.DownstreamClient) *httpserver.Server {
	cfg := &httpserver.ServerConfig{
		Host:           "127.0.0.1",
		Port:           "0",
		AllowedOrigins: []string{"*"},
	}
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return httpserver.NewServer(cfg, logger, httpserver.ServerDeps{
		GatewayService:   gateway,
		DownstreamClient: downstreamClient,
	})
}

func do(server *httpserver.Server, method, path, body, bearer string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	server.Echo().ServeHTTP(rec, req)
	return rec
}

func admittingGateway(identity string) *tmocks.GatewayServiceMock {
	return &tmocks.GatewayServiceMock{
		AuthorizeRequestFn: func(ctx context.Context, token string) (*ports.AuthorizedRequest, error) {
			return &ports.AuthorizedRequest{
				Identity: identity,
				Quota:    quota.Decision{Allowed: true, Limit: 100, Remaining: 99},
			}, nil
		},
	}
}

func TestIssueToken_ResponseShape(t *testing.T) {
	expires := time.Now().Add(720 * time.Hour)
	gateway := &tmocks.GatewayServiceMock{
		IssueCredentialFn: func(ctx context.Context) (*auth.IssuedCredential, error) {
			return &auth.IssuedCredential{Token: "h.p.s", Identity: "anon_1_abc", ExpiresAt: expires}, nil
		},
		PolicyFn: func() quota.Policy { return quota.Policy{MaxRequests: 100, Window: time.Hour} },
	}
	server := newTestServer(gateway, &tmocks.DownstreamClientMock{})

	rec := do(server, http.MethodPost, "/api/token", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp auth.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "h.p.s", resp.Token)
	require.Equal(t, "anon_1_abc", resp.UserID)
	require.Equal(t, expires.UnixMilli(), resp.ExpiresAt)
	require.Equal(t, 100, resp.RateLimit.MaxRequests)
	require.EqualValues(t, 3600000, resp.RateLimit.WindowMs)
}

func TestIssueToken_MethodNotAllowed(t *testing.T) {
	server := newTestServer(&tmocks.GatewayServiceMock{}, &tmocks.DownstreamClientMock{})

	rec := do(server, http.MethodGet, "/api/token", "", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestIssueToken_InternalFailure(t *testing.T) {
	gateway := &tmocks.GatewayServiceMock{
		IssueCredentialFn: func(ctx context.Context) (*auth.IssuedCredential, error) {
			return nil, fmt.Errorf("entropy exhausted")
		},
	}
	server := newTestServer(gateway, &tmocks.DownstreamClientMock{})

	rec := do(server, http.MethodPost, "/api/token", "", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "entropy")
}

func TestProxy_RequiresCredential(t *testing.T) {
	server := newTestServer(&tmocks.GatewayServiceMock{}, &tmocks.DownstreamClientMock{})

	rec := do(server, http.MethodPost, "/api/external-service", `{"q":1}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProxy_InvalidJSONBody(t *testing.T) {
	server := newTestServer(admittingGateway("anon_1_abc"), &tmocks.DownstreamClientMock{})

	rec := do(server, http.MethodPost, "/api/external-service", "{broken", "good")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProxy_EmptyBodyIsBadRequest(t *testing.T) {
	server := newTestServer(admittingGateway("anon_1_abc"), &tmocks.DownstreamClientMock{})

	rec := do(server, http.MethodPost, "/api/external-service", "", "good")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProxy_DownstreamStatusAndBodyPassThrough(t *testing.T) {
	downstreamClient := &tmocks.DownstreamClientMock{
		ForwardFn: func(ctx context.Context, payload []byte) (*ports.DownstreamResponse, error) {
			require.JSONEq(t, `{"q":1}`, string(payload))
			return &ports.DownstreamResponse{
				StatusCode:  http.StatusCreated,
				Body:        []byte(`{"created":true}`),
				ContentType: "application/json",
			}, nil
		},
	}
	server := newTestServer(admittingGateway("anon_1_abc"), downstreamClient)

	rec := do(server, http.MethodPost, "/api/external-service", `{"q":1}`, "good")
	require.Equal(t, http.StatusCreated, rec.Code)
	require.JSONEq(t, `{"created":true}`, rec.Body.String())
}

func TestProxy_DownstreamFailureReturns503(t *testing.T) {
	downstreamClient := &tmocks.DownstreamClientMock{
		ForwardFn: func(ctx context.Context, payload []byte) (*ports.DownstreamResponse, error) {
			return nil, fmt.Errorf("connection refused")
		},
	}
	server := newTestServer(admittingGateway("anon_1_abc"), downstreamClient)

	rec := do(server, http.MethodPost, "/api/external-service", `{"q":1}`, "good")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NotContains(t, rec.Body.String(), "connection refused")
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(&tmocks.GatewayServiceMock{}, &tmocks.DownstreamClientMock{})

	rec := do(server, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"healthy"`)
}
