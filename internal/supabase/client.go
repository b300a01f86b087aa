// Package supabase is a minimal client for the PostgREST surface of a Supabase project.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/palemoky/poetry-importer/internal/config"
	"github.com/palemoky/poetry-importer/internal/logger"
)

// Collections exposed by the poetry schema.
const (
	TableDynasties = "dynasties"
	TablePoets     = "poets"
	TablePoems     = "poems"
)

// StatusTransportError is reported for requests that never reached the backend.
const StatusTransportError = http.StatusInternalServerError

const preferHeader = "return=representation, resolution=merge-duplicates"

// Backend is the request surface used by the resolver and the importer.
type Backend interface {
	Request(ctx context.Context, method, resource string, data any) *Response
}

// Client issues requests against <base>/rest/v1/<resource>.
type Client struct {
	baseURL    string
	key        string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit throttles outgoing requests. rps <= 0 disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient creates a client for the given backend configuration.
func NewClient(cfg config.BackendConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		key:        cfg.Key,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Headers returns the headers sent with every request.
func (c *Client) Headers() http.Header {
	h := make(http.Header)
	h.Set("apikey", c.key)
	h.Set("Authorization", "Bearer "+c.key)
	h.Set("Content-Type", "application/json")
	h.Set("Prefer", preferHeader)
	return h
}

// ResourceURL returns the REST URL of a resource. An empty resource is the REST root.
func (c *Client) ResourceURL(resource string) string {
	return c.baseURL + "/rest/v1/" + strings.TrimLeft(resource, "/")
}

// Request sends a GET or POST. For GET, data is encoded as query parameters
// (map[string]string or url.Values); for POST it is encoded as a JSON body.
// Failures that produce no backend response come back as a synthetic
// response with StatusTransportError, the error text as body and Err set.
func (c *Client) Request(ctx context.Context, method, resource string, data any) *Response {
	req, err := c.newRequest(ctx, method, resource, data)
	if err != nil {
		return errorResponse(err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return errorResponse(fmt.Errorf("rate limiter: %w", err))
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debug("Backend request failed",
			zap.String("method", method),
			zap.String("resource", resource),
			zap.Error(err),
		)
		return errorResponse(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errorResponse(fmt.Errorf("failed to read response body: %w", err))
	}

	logger.Debug("Backend request",
		zap.String("method", method),
		zap.String("resource", resource),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &Response{StatusCode: resp.StatusCode, Body: body}
}

func (c *Client) newRequest(ctx context.Context, method, resource string, data any) (*http.Request, error) {
	target := c.ResourceURL(resource)

	var body io.Reader
	switch method {
	case http.MethodGet:
		query, err := encodeQuery(data)
		if err != nil {
			return nil, err
		}
		if query != "" {
			target += "?" + query
		}
	case http.MethodPost:
		if data != nil {
			payload, err := json.Marshal(data)
			if err != nil {
				return nil, fmt.Errorf("failed to encode request body: %w", err)
			}
			body = bytes.NewReader(payload)
		}
	default:
		return nil, fmt.Errorf("unsupported method: %s", method)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header = c.Headers()
	return req, nil
}

func encodeQuery(data any) (string, error) {
	switch params := data.(type) {
	case nil:
		return "", nil
	case url.Values:
		return params.Encode(), nil
	case map[string]string:
		values := make(url.Values, len(params))
		for k, v := range params {
			values.Set(k, v)
		}
		return values.Encode(), nil
	default:
		return "", fmt.Errorf("unsupported query parameters type %T", data)
	}
}

// Select fetches rows of table whose column equals value exactly.
func Select(ctx context.Context, b Backend, table, column, value string) *Response {
	return b.Request(ctx, http.MethodGet, table, map[string]string{column: "eq." + value})
}

// Insert creates a row in table.
func Insert(ctx context.Context, b Backend, table string, record any) *Response {
	return b.Request(ctx, http.MethodPost, table, record)
}
