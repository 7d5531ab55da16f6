// Package api is a typed client for the Meetly marketplace REST API.
//
// One Client carries the shared transport: bearer-token injection, request
// ids, envelope decoding and the 401 hook. Each resource group is exposed
// as a service field (Auth, Events, Conversations, ...). Calls are never
// retried or cached.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/meetly-app/meetly/pkg/models"
	"github.com/meetly-app/meetly/pkg/version"
)

const (
	// HeaderRequestID carries a per-request uuid.
	HeaderRequestID = "X-Request-ID"

	// HeaderIdempotencyKey is sent on calls that move money.
	HeaderIdempotencyKey = "Idempotency-Key"

	maxBodySize = 8 << 20
)

// TokenSource supplies the bearer token for each request. An empty token
// sends no Authorization header.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed TokenSource.
type StaticToken string

// Token returns t.
func (t StaticToken) Token() string { return string(t) }

// UnauthorizedHandler runs once for every 401 response, before the error
// is returned to the caller.
type UnauthorizedHandler func(err *Error)

// Options configure a Client.
type Options struct {
	// BaseURL is the API root, e.g. http://localhost:5000/api.
	BaseURL string

	// HTTPClient defaults to a client with Timeout.
	HTTPClient *http.Client

	// Timeout bounds each request. Zero means no per-request timeout.
	Timeout time.Duration

	Tokens         TokenSource
	OnUnauthorized UnauthorizedHandler

	// Logger defaults to a disabled logger.
	Logger *zerolog.Logger

	// UserAgent defaults to version.UserAgent().
	UserAgent string
}

// Client talks to the API. It is safe for concurrent use.
type Client struct {
	base           *url.URL
	http           *http.Client
	timeout        time.Duration
	tokens         TokenSource
	onUnauthorized UnauthorizedHandler
	log            zerolog.Logger
	userAgent      string

	Auth           *AuthService
	Events         *EventsService
	Users          *UsersService
	Conversations  *ConversationsService
	Messages       *MessagesService
	Payments       *PaymentsService
	Subscriptions  *SubscriptionsService
	Admin          *AdminService
	Reviews        *ReviewsService
	Comments       *CommentsService
	WebsiteReviews *WebsiteReviewsService
}

// New validates opts and returns a Client.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be an absolute http(s) url", opts.BaseURL)
	}

	c := &Client{
		base:           base,
		http:           opts.HTTPClient,
		timeout:        opts.Timeout,
		tokens:         opts.Tokens,
		onUnauthorized: opts.OnUnauthorized,
		log:            zerolog.Nop(),
		userAgent:      opts.UserAgent,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger != nil {
		c.log = opts.Logger.With().Str("component", "api").Logger()
	}
	if c.userAgent == "" {
		c.userAgent = version.UserAgent()
	}

	c.Auth = &AuthService{c: c}
	c.Events = &EventsService{c: c}
	c.Users = &UsersService{c: c}
	c.Conversations = &ConversationsService{c: c}
	c.Messages = &MessagesService{c: c}
	c.Payments = &PaymentsService{c: c}
	c.Subscriptions = &SubscriptionsService{c: c}
	c.Admin = &AdminService{c: c}
	c.Reviews = &ReviewsService{c: c}
	c.Comments = &CommentsService{c: c}
	c.WebsiteReviews = &WebsiteReviewsService{c: c}
	return c, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// request describes one API call.
type request struct {
	method string
	path   string
	query  url.Values
	body   any
	header http.Header
}

// do performs req and decodes the envelope's data into out (may be nil).
func (c *Client) do(ctx context.Context, req request, out any) error {
	target := c.base.JoinPath(req.path)
	if len(req.query) > 0 {
		target.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		buf, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("%s %s: encode body: %w", req.method, req.path, err)
		}
		body = bytes.NewReader(buf)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target.String(), body)
	if err != nil {
		return fmt.Errorf("%s %s: create request: %w", req.method, req.path, err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set(HeaderRequestID, requestID)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	for k, vs := range req.header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.Debug().Err(err).Str("method", req.method).Str("path", req.path).
			Str("request_id", requestID).Msg("request failed")
		return fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", req.method, req.path, err)
	}

	c.log.Debug().
		Str("method", req.method).
		Str("path", req.path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Str("request_id", requestID).
		Msg("api call")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newError(resp.StatusCode, data, requestID)
		if resp.StatusCode == http.StatusUnauthorized {
			c.log.Warn().Str("path", req.path).Str("request_id", requestID).Msg("unauthorized")
			if c.onUnauthorized != nil {
				c.onUnauthorized(apiErr)
			}
		}
		return apiErr
	}

	if !gjson.ValidBytes(data) || !gjson.GetBytes(data, "success").Exists() {
		return fmt.Errorf("%w: %s %s", ErrEnvelope, req.method, req.path)
	}
	var env models.Envelope[json.RawMessage]
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrEnvelope, req.method, req.path, err)
	}
	if !env.Success {
		return newError(resp.StatusCode, data, requestID)
	}
	if out == nil || len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: %s %s: decode data: %v", ErrEnvelope, req.method, req.path, err)
	}
	return nil
}

// call is do with a typed result.
func call[T any](ctx context.Context, c *Client, req request) (T, error) {
	var out T
	err := c.do(ctx, req, &out)
	return out, err
}

func get(path string, query url.Values) request {
	return request{method: http.MethodGet, path: path, query: query}
}

func post(path string, body any) request {
	return request{method: http.MethodPost, path: path, body: body}
}

func put(path string, body any) request {
	return request{method: http.MethodPut, path: path, body: body}
}

func patch(path string, body any) request {
	return request{method: http.MethodPatch, path: path, body: body}
}

func del(path string) request {
	return request{method: http.MethodDelete, path: path}
}

// pathf joins escaped ids onto a resource path. Empty ids and the dot
// segments "." and ".." are refused because url.JoinPath would collapse
// them into a different resource.
func pathf(base string, ids ...string) (string, error) {
	parts := []string{base}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		switch id {
		case "":
			return "", ErrMissingID
		case ".", "..":
			return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
		}
		parts = append(parts, url.PathEscape(id))
	}
	return strings.Join(parts, "/"), nil
}

// withSuffix is pathf followed by a trailing action segment.
func withSuffix(base, id, action string) (string, error) {
	p, err := pathf(base, id)
	if err != nil {
		return "", err
	}
	return p + "/" + action, nil
}

// IsTimeout reports whether err is a context deadline or client timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}
