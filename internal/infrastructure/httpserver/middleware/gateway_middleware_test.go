package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/core/domain/auth"
	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/core/domain/quota"
	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/core/ports"
	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/infrastructure/httpserver/helpers"
	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/infrastructure/httpserver/middleware"
	tmocks "github.com/king-nomura/cloudflare-workers-api-proxy/test/mocks"
)

func invoke(t *testing.T, gateway ports.GatewayService, authorization string, next echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	m := middleware.NewGatewayMiddleware(gateway, nil, logrus.New())
	handler := m.RequireAnonymousToken()(next)
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, handler(c)
}

func okHandler(c echo.Context) error { return c.NoContent(http.StatusOK) }

func TestGatewayMiddleware_MissingTokenReturns401(t *testing.T) {
	_, err := invoke(t, &tmocks.GatewayServiceMock{}, "", okHandler)
	require.Error(t, err)
	htErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, htErr.Code)
}

func TestGatewayMiddleware_MalformedAuthorizationHeaderReturns401(t *testing.T) {
	_, err := invoke(t, &tmocks.GatewayServiceMock{}, "Basic dXNlcg==", okHandler)
	require.Error(t, err)
	htErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, htErr.Code)
}

func TestGatewayMiddleware_InvalidTokenReturns401(t *testing.T) {
	gateway := &tmocks.GatewayServiceMock{AuthorizeRequestFn: func(ctx context.Context, token string) (*ports.AuthorizedRequest, error) {
		return nil, auth.ErrBadSignature
	}}
	_, err := invoke(t, gateway, "Bearer tampered", okHandler)
	require.Error(t, err)
	htErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, htErr.Code)
	// internal error detail must not leak
	require.Equal(t, "invalid or expired token", htErr.Message)
}

func TestGatewayMiddleware_ThrottledReturns429WithRetryAfter(t *testing.T) {
	gateway := &tmocks.GatewayServiceMock{AuthorizeRequestFn: func(ctx context.Context, token string) (*ports.AuthorizedRequest, error) {
		return &ports.AuthorizedRequest{
			Identity: "anon_1_abc",
			Quota: quota.Decision{
				Allowed:    false,
				Limit:      100,
				RetryAfter: 1800 * time.Second,
				Reset:      time.Now().Add(30 * time.Minute),
			},
		}, nil
	}}

	rec, err := invoke(t, gateway, "Bearer good", okHandler)
	require.NoError(t, err)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "1800", rec.Header().Get("Retry-After"))
	require.Equal(t, "100", rec.Header().Get("X-RateLimit-Limit"))
	require.Contains(t, rec.Body.String(), `"retryAfter":1800`)
	require.Contains(t, rec.Body.String(), `"error"`)
}

func TestGatewayMiddleware_AdmittedSetsIdentityAndHeaders(t *testing.T) {
	gateway := &tmocks.GatewayServiceMock{AuthorizeRequestFn: func(ctx context.Context, token string) (*ports.AuthorizedRequest, error) {
		require.Equal(t, "good", token)
		return &ports.AuthorizedRequest{
			Identity: "anon_1_abc",
			Quota:    quota.Decision{Allowed: true, Limit: 100, Remaining: 57},
		}, nil
	}}

	var seenIdentity string
	rec, err := invoke(t, gateway, "Bearer good", func(c echo.Context) error {
		id, err := helpers.GetIdentityFromContext(c)
		require.NoError(t, err)
		seenIdentity = id
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "anon_1_abc", seenIdentity)
	require.Equal(t, "57", rec.Header().Get("X-RateLimit-Remaining"))
}
