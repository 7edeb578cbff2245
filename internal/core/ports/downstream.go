package ports

import "context"

// DownstreamClient forwards an authorized JSON payload to the proxied
// third-party endpoint. The response status and body are passed through
// to the caller verbatim; transport-level failures surface as errors.
type DownstreamClient interface {
	Forward(ctx context.Context, payload []byte) (*DownstreamResponse, error)
}

// DownstreamResponse is the proxied endpoint's reply.
type DownstreamResponse struct {
	StatusCode  int
	Body        []byte
	ContentType string
}
