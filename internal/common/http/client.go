// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"rynko-workers/internal/common/metrics"

	"github.com/google/uuid"
)

// Authenticator adds credentials to an outbound request.
type Authenticator interface {
	Authenticate(req *http.Request)
}

// RequestObserver receives one callback per completed request.
type RequestObserver interface {
	ObserveRequest(ctx context.Context, method, route string, status int, duration time.Duration)
}

// RequestOptions describes a JSON API call. URL is absolute. Route is a
// low-cardinality label for metrics and defaults to the URL path.
type RequestOptions struct {
	Method string
	URL    string
	Route  string
	Query  map[string]string
	Body   interface{}
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       interface{}
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("Request failed with status code %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("Request failed with status code %d", e.StatusCode)
}

type Client struct {
	httpClient *http.Client
	auth       Authenticator
	observer   RequestObserver
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithAuthenticator returns a copy of c that authenticates every JSON request.
func (c *Client) WithAuthenticator(auth Authenticator) *Client {
	cp := *c
	cp.auth = auth
	return &cp
}

// WithObserver returns a copy of c reporting to observer.
func (c *Client) WithObserver(observer RequestObserver) *Client {
	cp := *c
	cp.observer = observer
	return &cp
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	return c.httpClient.Do(req)
}

// RequestWithAuthentication sends a JSON request with credentials applied
// and returns the decoded response body. An empty body decodes to nil.
func (c *Client) RequestWithAuthentication(ctx context.Context, opts RequestOptions) (interface{}, error) {
	if opts.Method == "" {
		opts.Method = http.MethodGet
	}

	target, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid request url %q: %w", opts.URL, err)
	}
	if len(opts.Query) > 0 {
		q := target.Query()
		for k, v := range opts.Query {
			q.Set(k, v)
		}
		target.RawQuery = q.Encode()
	}

	var body io.Reader
	if opts.Body != nil {
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.New().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.auth != nil {
		c.auth.Authenticate(req)
	}

	route := opts.Route
	if route == "" {
		route = target.Path
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	metrics.UpstreamRequestDuration.WithLabelValues(opts.Method).Observe(elapsed.Seconds())
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(opts.Method, "error").Inc()
		c.observe(ctx, opts.Method, route, 0, elapsed)
		return nil, err
	}
	defer resp.Body.Close()

	metrics.UpstreamRequests.WithLabelValues(opts.Method, strconv.Itoa(resp.StatusCode)).Inc()
	c.observe(ctx, opts.Method, route, resp.StatusCode, elapsed)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	decoded := decodeBody(raw)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       decoded,
			Message:    vendorMessage(decoded),
		}
	}

	return decoded, nil
}

func (c *Client) observe(ctx context.Context, method, route string, status int, elapsed time.Duration) {
	if c.observer != nil {
		c.observer.ObserveRequest(ctx, method, route, status, elapsed)
	}
}

// decodeBody returns the JSON value of raw, or raw as a string when it is
// not JSON.
func decodeBody(raw []byte) interface{} {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return string(trimmed)
	}
	return v
}

// vendorMessage pulls a human readable message out of an error body.
func vendorMessage(body interface{}) string {
	switch b := body.(type) {
	case map[string]interface{}:
		for _, key := range []string{"message", "error"} {
			switch v := b[key].(type) {
			case string:
				return v
			case map[string]interface{}:
				if msg, ok := v["message"].(string); ok {
					return msg
				}
			case []interface{}:
				parts := make([]string, 0, len(v))
				for _, p := range v {
					if s, ok := p.(string); ok {
						parts = append(parts, s)
					}
				}
				if len(parts) > 0 {
					return strings.Join(parts, "; ")
				}
			}
		}
	case string:
		if len(b) <= 200 {
			return b
		}
	}
	return ""
}
