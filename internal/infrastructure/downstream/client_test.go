package downstream_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	config "github.com/king-nomura/cloudflare-workers-api-proxy/configs"
	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/infrastructure/downstream"
)

func TestClient_ForwardPassesStatusAndBodyThrough(t *testing.T) {
	var gotBody []byte
	var gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get("X-Request-ID")
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"answer":42}`))
	}))
	defer srv.Close()

	client := downstream.NewClient(&config.DownstreamConfig{URL: srv.URL, Timeout: 5 * time.Second}, nil)

	resp, err := client.Forward(context.Background(), []byte(`{"q":"life"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusTeapot, resp.StatusCode)
	require.Equal(t, []byte(`{"answer":42}`), resp.Body)
	require.Equal(t, "application/json", resp.ContentType)
	require.Equal(t, []byte(`{"q":"life"}`), gotBody)
	require.NotEmpty(t, gotRequestID)
}

func TestClient_DownstreamErrorStatusIsNotAClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := downstream.NewClient(&config.DownstreamConfig{URL: srv.URL, Timeout: 5 * time.Second}, nil)

	// A completed exchange passes through whatever the status is.
	resp, err := client.Forward(context.Background(), []byte(`{}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // unreachable

	client := downstream.NewClient(&config.DownstreamConfig{URL: srv.URL, Timeout: time.Second}, nil)

	_, err := client.Forward(context.Background(), []byte(`{}`))
	require.Error(t, err)
}

func TestClient_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := downstream.NewClient(&config.DownstreamConfig{URL: srv.URL, Timeout: time.Second}, nil)

	for i := 0; i < 5; i++ {
		_, err := client.Forward(context.Background(), []byte(`{}`))
		require.Error(t, err)
	}

	// The breaker has tripped; calls now fail fast without dialing.
	start := time.Now()
	_, err := client.Forward(context.Background(), []byte(`{}`))
	require.Error(t, err)
	require.Less(t, time.Since(start), 500*time.Millisecond)
}
