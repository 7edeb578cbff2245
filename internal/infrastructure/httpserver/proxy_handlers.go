package httpserver

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/infrastructure/httpserver/helpers"
)

// Proxy handler. Authorization and quota were already settled by the
// gateway middleware; here the body is validated and forwarded, and the
// downstream status/body pass through verbatim.
func (s *Server) proxyExternalService(c echo.Context) error {
	identity, err := helpers.GetIdentityFromContext(c)
	if err != nil {
		return err
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(body) == 0 || !json.Valid(body) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}

	resp, err := s.downstream.Forward(c.Request().Context(), body)
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"identity": identity}).WithError(err).Error("downstream proxy failed")
		}
		return echo.NewHTTPError(http.StatusServiceUnavailable, "external service unavailable")
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"identity": identity, "status": resp.StatusCode}).Debug("proxied external service call")
	}
	return c.Blob(resp.StatusCode, resp.ContentType, resp.Body)
}
