// Package pipeline is the storefront's authenticated HTTP channel.
//
// Every call attaches the session's bearer token when one is available,
// carries the caller's context for cancellation, and maps any failure to
// exactly one entity.ErrorKind before returning.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/delivery-storefront/internal/pkg/constants"
	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/domain/entity"
)

// maxResponseSize limits how much of a response body is read.
const maxResponseSize = 1 << 20

// Client talks to the storefront server.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	tokens     TokenSource // nil-safe: requests go out unauthenticated
	logger     *slog.Logger
}

type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client. Its transport is used as-is.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

func WithTokenSource(ts TokenSource) ClientOption {
	return func(client *Client) {
		client.tokens = ts
	}
}

func WithLogger(logger *slog.Logger) ClientOption {
	return func(client *Client) {
		client.logger = logger
	}
}

// WithTimeout bounds every request. Zero disables the bound.
func WithTimeout(d time.Duration) ClientOption {
	return func(client *Client) {
		client.httpClient.Timeout = d
	}
}

// NewClient returns a client for the server at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("pipeline: invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("pipeline: base url %q must be http or https", baseURL)
	}

	c := &Client{
		baseURL: u,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// call describes one outbound request.
type call struct {
	method  string
	path    string
	query   url.Values
	body    any
	headers map[string]string
	// conflictOn409 marks the one endpoint where 409 carries a stock conflict.
	conflictOn409 bool
}

// do sends the request and decodes a 2xx JSON body into out (when non-nil).
// Every error it returns is an *entity.RequestError.
func (c *Client) do(ctx context.Context, cl call, out any) error {
	req, err := c.newRequest(ctx, cl)
	if err != nil {
		return entity.NewRequestError(entity.KindClientError, err.Error(), err)
	}

	c.authorize(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransport(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return classifyTransport(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reqErr := classifyStatus(resp.StatusCode, body, cl.conflictOn409)
		c.logger.DebugContext(ctx, "request rejected",
			"method", cl.method, "path", cl.path, "status", resp.StatusCode, "kind", reqErr.Kind)
		return reqErr
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return entity.NewRequestError(entity.KindServerError, "server returned an unreadable response", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, cl call) (*http.Request, error) {
	u := c.baseURL.JoinPath(cl.path)
	if len(cl.query) > 0 {
		u.RawQuery = cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", cl.method, cl.path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", cl.method, cl.path, err)
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(constants.HeaderXRequestId, uuid.NewString())
	for k, v := range cl.headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}
	return req, nil
}

// authorize attaches the bearer token. Token failures never block the
// request: public endpoints must stay reachable without a session.
func (c *Client) authorize(ctx context.Context, req *http.Request) {
	if c.tokens == nil {
		return
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "session token unavailable, sending unauthenticated", "error", err)
		return
	}
	if token != "" {
		req.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	}
}
