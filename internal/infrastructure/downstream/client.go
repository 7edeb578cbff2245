// Package downstream wraps the proxied third-party endpoint behind a
// circuit breaker so a struggling dependency degrades into fast 503s
// instead of held connections.
package downstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	config "github.com/king-nomura/cloudflare-workers-api-proxy/configs"
	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/core/ports"
)

type Client struct {
	url        string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *logrus.Logger
}

func NewClient(cfg *config.DownstreamConfig, logger *logrus.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "downstream",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).Warn("downstream circuit state changed")
			}
		},
	})

	return &Client{
		url:        cfg.URL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		logger:     logger,
	}
}

// Forward posts the JSON payload to the downstream endpoint and returns
// its status and body verbatim. Transport failures and an open breaker
// surface as errors; any completed HTTP exchange, whatever the status,
// counts as breaker success because the status belongs to the caller.
func (c *Client) Forward(ctx context.Context, payload []byte) (*ports.DownstreamResponse, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.post(ctx, payload)
	})
	if err != nil {
		if c.logger != nil {
			c.logger.WithError(err).Error("downstream call failed")
		}
		return nil, fmt.Errorf("downstream call failed: %w", err)
	}
	return result.(*ports.DownstreamResponse), nil
}

func (c *Client) post(ctx context.Context, payload []byte) (*ports.DownstreamResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	return &ports.DownstreamResponse{
		StatusCode:  resp.StatusCode,
		Body:        body,
		ContentType: contentType,
	}, nil
}

// State exposes the breaker state for health probes.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

var _ ports.DownstreamClient = (*Client)(nil)
