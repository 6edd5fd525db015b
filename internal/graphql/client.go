// Package graphql is a small client for the AppSync-style GraphQL endpoint
// that stores comments.
package graphql

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/chazuruo/aoss-console/internal/errors"
)

const (
	defaultTimeout = 10 * time.Second
	// maxErrorBody caps how much of a failed response is kept for the error.
	maxErrorBody = 4 << 10
)

// Client posts GraphQL operations to a single endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	auth       Authorizer
	maxRetries int
	newBackoff func() backoff.BackOff
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAuthorizer sets how requests are authorized. Defaults to None.
func WithAuthorizer(a Authorizer) Option {
	return func(c *Client) { c.auth = a }
}

// WithTimeout bounds each HTTP attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithMaxRetries sets how many times a transient failure is retried.
// Zero makes every call one-shot.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithBackoff sets the backoff policy between retries.
func WithBackoff(newBackoff func() backoff.BackOff) Option {
	return func(c *Client) { c.newBackoff = newBackoff }
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient returns a client for endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: defaultTimeout},
		auth:       None{},
		newBackoff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff(
				backoff.WithInitialInterval(200*time.Millisecond),
				backoff.WithMaxInterval(2*time.Second),
				backoff.WithMaxElapsedTime(15*time.Second),
			)
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request is the JSON body of a GraphQL POST.
type Request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

// Error is one entry of a GraphQL errors array.
type Error struct {
	Message   string `json:"message"`
	ErrorType string `json:"errorType,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []Error         `json:"errors"`
}

// Do sends the operation and decodes its data into out. Every failure is a
// *errors.RemoteError wrapping errors.ErrUnavailable.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return c.fail(req.OperationName, 0, fmt.Errorf("encode request: %w", err))
	}

	requestID := uuid.NewString()
	attempt := 0
	op := func() (*response, error) {
		attempt++
		resp, status, err := c.post(ctx, body, requestID)
		if err != nil {
			if retryable(status, err) {
				c.logger.Debug("Retrying GraphQL request.", "op", req.OperationName, "attempt", attempt, "request_id", requestID, "error", err)
				return nil, &statusError{status: status, err: err}
			}
			return nil, backoff.Permanent(&statusError{status: status, err: err})
		}
		return resp, nil
	}

	var b backoff.BackOff = backoff.WithMaxRetries(c.newBackoff(), uint64(max(c.maxRetries, 0)))
	b = backoff.WithContext(b, ctx)
	resp, err := backoff.RetryWithData(op, b)
	if err != nil {
		var se *statusError
		if stderrors.As(err, &se) {
			return c.fail(req.OperationName, se.status, se.err)
		}
		return c.fail(req.OperationName, 0, err)
	}

	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		return c.fail(req.OperationName, http.StatusOK, fmt.Errorf("%s", strings.Join(msgs, "; ")))
	}
	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return c.fail(req.OperationName, http.StatusOK, fmt.Errorf("malformed data: %w", err))
	}
	return nil
}

func (c *Client) post(ctx context.Context, body []byte, requestID string) (*response, int, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-Id", requestID)
	if err := c.auth.Authorize(ctx, httpReq, body); err != nil {
		return nil, 0, err
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxErrorBody))
		return nil, httpResp.StatusCode, fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(snippet)))
	}

	var resp response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, httpResp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return &resp, httpResp.StatusCode, nil
}

func (c *Client) fail(op string, status int, err error) error {
	return &errors.RemoteError{Op: op, Status: status, Err: fmt.Errorf("%w: %v", errors.ErrUnavailable, err)}
}

// statusError carries the HTTP status through the backoff loop.
type statusError struct {
	status int
	err    error
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }

// retryable reports whether a failed attempt is worth repeating.
func retryable(status int, err error) bool {
	switch {
	case status == http.StatusTooManyRequests, status >= 500:
		return true
	case status != 0:
		return false
	}
	var opErr *net.OpError
	if stderrors.As(err, &opErr) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}
