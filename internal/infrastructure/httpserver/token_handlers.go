package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/core/domain/auth"
)

// Token issuance handler. Every call mints a fresh anonymous identity;
// there is nothing to authenticate against.
func (s *Server) issueToken(c echo.Context) error {
	cred, err := s.gateway.IssueCredential(c.Request().Context())
	if err != nil {
		if s.logger != nil {
			s.logger.WithError(err).Error("failed to issue token")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to issue token")
	}

	policy := s.gateway.Policy()
	return c.JSON(http.StatusOK, auth.TokenResponse{
		Token:     cred.Token,
		UserID:    cred.Identity,
		ExpiresAt: cred.ExpiresAt.UnixMilli(),
		RateLimit: auth.RateLimitInfo{
			MaxRequests: policy.MaxRequests,
			WindowMs:    policy.Window.Milliseconds(),
		},
	})
}
