// Package api is the REST client for the marketplace backend. It implements
// the domain ports over HTTP with either bearer-token or cookie credentials.
package api

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

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"wellmatch/internal/domain"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// DefaultWhoAmIPath is the identity probe used by cookie sessions.
const DefaultWhoAmIPath = "/api/professionals/me"

// CredentialSource supplies the current bearer token, or "" when there is
// none.
type CredentialSource interface {
	Credential() string
}

// Option configures a Client.
type Option func(*Client)

// WithBearer sends src's token as an Authorization header on every
// authenticated call.
func WithBearer(src CredentialSource) Option {
	return func(c *Client) { c.bearer = src }
}

// WithCookieJar sends and stores cookies through jar on every call.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Client) { c.jar = jar }
}

// WithWhoAmIPath overrides the identity probe path.
func WithWhoAmIPath(path string) Option {
	return func(c *Client) { c.whoAmIPath = path }
}

// WithTransport sets the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.transport = rt }
}

// Client talks to the backend. Anonymous calls (login, register) never
// carry the bearer token; authenticated calls always do.
type Client struct {
	base       *url.URL
	log        *zap.Logger
	bearer     CredentialSource
	jar        http.CookieJar
	transport  http.RoundTripper
	whoAmIPath string

	anon   *http.Client
	authed *http.Client
}

// New creates a client for the backend at baseURL.
func New(baseURL string, log *zap.Logger, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api url %q must be absolute", baseURL)
	}

	c := &Client{
		base:       base,
		log:        log.Named("api"),
		transport:  http.DefaultTransport,
		whoAmIPath: DefaultWhoAmIPath,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.anon = &http.Client{Transport: c.transport, Jar: c.jar}
	authed := c.transport
	if c.bearer != nil {
		authed = &oauth2.Transport{Source: tokenSource{c.bearer}, Base: c.transport}
	}
	c.authed = &http.Client{Transport: authed, Jar: c.jar}
	return c, nil
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

// tokenSource adapts a CredentialSource to oauth2. Tokens never carry an
// expiry here; expiry is enforced by the session store.
type tokenSource struct {
	src CredentialSource
}

func (t tokenSource) Token() (*oauth2.Token, error) {
	tok := t.src.Credential()
	if tok == "" {
		return nil, domain.ErrNoSession
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, c.authed, http.MethodGet, path, nil, out)
}

func (c *Client) putJSON(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, c.authed, http.MethodPut, path, in, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, c.authed, http.MethodPost, path, in, out)
}

func (c *Client) doJSON(ctx context.Context, hc *http.Client, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, hc, method, path, contentType, body, out)
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path, contentType string, body io.Reader, out any) error {
	op := method + " " + path
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.log.Warn("request failed", zap.String("op", op), zap.String("request_id", reqID), zap.Error(err))
		return &domain.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug("request",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.String("request_id", reqID))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.APIError{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.TransportError{Op: "decode " + op, Err: err}
	}
	return nil
}

// errorMessage extracts the server's "error" (or "message") text from an
// error body, if the body is JSON.
func errorMessage(r io.Reader) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}

// decodeFields decodes a JSON object keeping numbers exact.
func decodeFields(r io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}
