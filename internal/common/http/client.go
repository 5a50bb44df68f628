// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "answer-bot/internal/common/errors"
	"answer-bot/internal/models"
)

const defaultScheme = "https"

// Client sends RequestSpecs to the language service. It makes exactly one
// attempt per call and enforces no timeout of its own: deadlines and
// cancellation come from the caller's context.
type Client struct {
	httpClient *http.Client
	scheme     string
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom http.Client (proxy, connection pool sizing).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithScheme overrides the URL scheme put in front of the bare host.
func WithScheme(scheme string) Option {
	return func(c *Client) {
		if scheme != "" {
			c.scheme = strings.TrimSuffix(scheme, "://")
		}
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		scheme:     defaultScheme,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Send executes spec and returns the fully drained, JSON-validated body.
//
// Errors are *errors.StandardError values: TRANSPORT_ERROR for network
// failures and cancellation, UPSTREAM_STATUS_ERROR for non-2xx replies and
// PARSE_ERROR for a body that is not valid JSON.
func (c *Client) Send(ctx context.Context, spec *models.RequestSpec) (models.RawResponse, error) {
	body, err := json.Marshal(spec.Body)
	if err != nil {
		return nil, apperrors.NewTransportError(fmt.Errorf("encode request body: %w", err))
	}

	method := spec.Method
	if method == "" {
		method = http.MethodPost
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(spec), bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewTransportError(err)
	}
	for k, v := range spec.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewTransportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewTransportError(fmt.Errorf("read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewUpstreamStatusError(resp.StatusCode, string(data))
	}

	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.NewParseError(fmt.Errorf("decode response body: %w", err))
	}

	return models.RawResponse(raw), nil
}

// URL joins the client's scheme with the spec's bare host and path.
func (c *Client) URL(spec *models.RequestSpec) string {
	return c.scheme + "://" + spec.Host + spec.Path
}
