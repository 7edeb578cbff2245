package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/core/ports"
	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/infrastructure/httpserver/helpers"
)

type GatewayMiddleware struct {
	gateway   ports.GatewayService
	decisions *prometheus.CounterVec
	logger    *logrus.Logger
}

func NewGatewayMiddleware(gateway ports.GatewayService, decisions *prometheus.CounterVec, logger *logrus.Logger) *GatewayMiddleware {
	return &GatewayMiddleware{gateway: gateway, decisions: decisions, logger: logger}
}

// RequireAnonymousToken creates middleware that verifies the bearer
// credential and consumes one quota unit before the handler runs. The
// two decisions are made together because the gateway treats them as
// one operation; the middleware only translates the outcome into
// status codes and headers.
func (m *GatewayMiddleware) RequireAnonymousToken() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := helpers.GetBearerToken(c)
			if err != nil {
				return err
			}

			res, err := m.gateway.AuthorizeRequest(c.Request().Context(), token)
			if err != nil {
				if m.logger != nil {
					m.logger.WithFields(logrus.Fields{"ip": c.RealIP(), "path": c.Request().URL.Path, "error": err.Error()}).Warn("credential verification failed")
				}
				// No internal detail leaks to the caller.
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			// Set standard rate limit headers when available
			c.Response().Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", res.Quota.Limit))
			c.Response().Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", res.Quota.Remaining))
			c.Response().Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", res.Quota.Reset.Unix()))

			if !res.Quota.Allowed {
				if m.decisions != nil {
					m.decisions.WithLabelValues("throttled").Inc()
				}
				retryAfter := int(res.Quota.RetryAfter.Seconds())
				if retryAfter > 0 {
					c.Response().Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
				}
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"error":      "rate limit exceeded",
					"retryAfter": retryAfter,
				})
			}

			if m.decisions != nil {
				m.decisions.WithLabelValues("allowed").Inc()
			}
			helpers.SetIdentity(c, res.Identity)
			helpers.SetQuotaDecision(c, res.Quota)

			return next(c)
		}
	}
}
