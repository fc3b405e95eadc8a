// Package api issues JSON requests against the tasktrackr backend and
// normalizes failed responses into *Error values.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	// RequestIDHeader carries a per-request correlation id.
	RequestIDHeader = "X-Request-ID"

	contentTypeJSON = "application/json"
)

// emptyObject stands in for response bodies that are not valid JSON.
var emptyObject = json.RawMessage(`{}`)

// MultipartBody is a pre-encoded form payload. It is sent as-is with its own
// content type instead of being serialized as JSON.
type MultipartBody struct {
	ContentType string
	Body        io.Reader
}

// Client sends requests on behalf of the current session.
type Client struct {
	httpClient     *http.Client
	tokens         oauth2.TokenSource
	onUnauthorized func()
	remoteHost     string
	userAgent      string
	timeout        time.Duration
	log            *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUnauthorizedHandler registers fn to run when an authenticated request
// is answered with 401. The request still fails afterwards.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithRemoteHost sets the host of the hosted deployment, used to word 404 errors.
func WithRemoteHost(host string) Option {
	return func(c *Client) { c.remoteHost = host }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithTimeout bounds requests whose context carries no deadline.
// By default only the caller's context cancels a request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a Client that reads credentials from tokens.
func New(tokens oauth2.TokenSource, opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		tokens:     tokens,
		userAgent:  "tasktrackr",
		log:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type requestConfig struct {
	auth   bool
	header http.Header
}

// RequestOption adjusts a single request.
type RequestOption func(*requestConfig)

// WithoutAuth sends the request without a bearer credential.
func WithoutAuth() RequestOption {
	return func(r *requestConfig) { r.auth = false }
}

// WithHeader sets an explicit request header.
func WithHeader(key, value string) RequestOption {
	return func(r *requestConfig) { r.header.Set(key, value) }
}

// Request sends method to rawURL and returns the parsed response body.
// Requests are authenticated unless WithoutAuth is given.
func (c *Client) Request(ctx context.Context, method, rawURL string, body any, opts ...RequestOption) (json.RawMessage, error) {
	rc := requestConfig{auth: true, header: make(http.Header)}
	for _, opt := range opts {
		opt(&rc)
	}

	var token *oauth2.Token
	if rc.auth {
		var err error
		token, err = c.token()
		if err != nil {
			return nil, err
		}
	}

	reader, contentType, err := encodeBody(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s %s body: %w", method, rawURL, err)
	}

	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, rawURL, err)
	}
	for k, v := range rc.header {
		req.Header[k] = v
	}
	if reader != nil && contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("User-Agent", c.userAgent)
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	if token != nil {
		token.SetAuthHeader(req)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("api request failed", "method", method, "url", rawURL, "request_id", requestID, "err", err)
		return nil, &Error{Method: method, URL: rawURL, Message: ErrTransport.Error(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Debug("api response body unreadable", "method", method, "url", rawURL, "request_id", requestID, "err", err)
		data = nil
	}
	raw := parseBody(data)

	c.log.Debug("api request",
		"method", method,
		"url", rawURL,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", requestID,
	)

	if resp.StatusCode == http.StatusUnauthorized && rc.auth && c.onUnauthorized != nil {
		c.onUnauthorized()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Method:  method,
			URL:     rawURL,
			Status:  resp.StatusCode,
			Message: c.failureMessage(rawURL, resp.StatusCode, raw),
		}
	}

	return raw, nil
}

func (c *Client) token() (*oauth2.Token, error) {
	if c.tokens == nil {
		return nil, ErrUnauthenticated
	}
	tok, err := c.tokens.Token()
	if err != nil || tok == nil || !tok.Valid() {
		return nil, ErrUnauthenticated
	}
	return tok, nil
}

// failureMessage picks the message for a failed response.
// A 404 message depends on whether the hosted deployment was targeted.
func (c *Client) failureMessage(rawURL string, status int, raw json.RawMessage) string {
	if status == http.StatusNotFound {
		if c.remoteHost != "" && hostOf(rawURL) == c.remoteHost {
			return msgServiceUnavailable
		}
		return msgEndpointNotFound
	}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return msgRequestFailed
}

func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case MultipartBody:
		return b.Body, b.ContentType, nil
	case *MultipartBody:
		return b.Body, b.ContentType, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(data), contentTypeJSON, nil
}

func parseBody(data []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return emptyObject
	}
	return json.RawMessage(trimmed)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
