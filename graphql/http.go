package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

const maxResponseBytes = 8 << 20

// ErrEmptyEndpoint is returned by [NewHTTPTransport] without an endpoint.
var ErrEmptyEndpoint = errors.New("graphql: endpoint required")

// HTTPTransport is the transport stage: it POSTs operations as JSON to a
// single endpoint.
type HTTPTransport struct {
	endpoint  string
	client    *http.Client
	userAgent string
}

// TransportOption customises an HTTPTransport.
type TransportOption func(*HTTPTransport)

// WithHTTPClient replaces the default client. The client should carry a
// cookie jar; without one the session cookie is never replayed.
func WithHTTPClient(c *http.Client) TransportOption {
	return func(t *HTTPTransport) {
		if c != nil {
			t.client = c
		}
	}
}

// WithTimeout sets the default client's timeout.
func WithTimeout(d time.Duration) TransportOption {
	return func(t *HTTPTransport) {
		if d > 0 {
			t.client.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header on every request.
func WithUserAgent(ua string) TransportOption {
	return func(t *HTTPTransport) {
		t.userAgent = ua
	}
}

// NewHTTPTransport builds a transport for endpoint. By default it uses a
// fresh client with an in-memory cookie jar.
func NewHTTPTransport(endpoint string, opts ...TransportOption) (*HTTPTransport, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, ErrEmptyEndpoint
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	t := &HTTPTransport{
		endpoint: endpoint,
		client:   &http.Client{Jar: jar, Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Endpoint returns the configured endpoint URL.
func (t *HTTPTransport) Endpoint() string {
	return t.endpoint
}

// Client returns the underlying http.Client.
func (t *HTTPTransport) Client() *http.Client {
	return t.client
}

type requestBody struct {
	OperationName string         `json:"operationName,omitempty"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Handle performs the exchange. It implements [HandlerFunc].
func (t *HTTPTransport) Handle(ctx context.Context, op *Operation) (*Response, error) {
	payload, err := json.Marshal(requestBody{
		OperationName: op.Name,
		Query:         op.Query,
		Variables:     op.Variables,
	})
	if err != nil {
		return nil, fmt.Errorf("encode operation %s: %w", op.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	for k, vs := range op.Header {
		req.Header[k] = append([]string(nil), vs...)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	res, err := t.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{StatusCode: res.StatusCode, Err: err}
	}

	var out Response
	decodeErr := json.Unmarshal(body, &out)
	out.StatusCode = res.StatusCode

	if res.StatusCode < 200 || res.StatusCode > 299 {
		te := &TransportError{StatusCode: res.StatusCode}
		if decodeErr == nil {
			te.Response = &out
		}
		return nil, te
	}
	if decodeErr != nil {
		return nil, &TransportError{
			StatusCode: res.StatusCode,
			Err:        fmt.Errorf("decode response: %w", decodeErr),
		}
	}
	return &out, nil
}
