package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
)

// Default endpoint paths for the three backend operations.
const (
	DefaultLoginPath      = "/auth/login"
	DefaultSignupPath     = "/auth/signup"
	DefaultNewsletterPath = "/newsletter/subscribe"
)

const contentTypeJSON = "application/json"

// Option customises client construction.
type Option func(*Client)

// WithHTTPClient injects the underlying http.Client. The default client has no
// timeout; pass one here or bound individual calls through the context.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout applies a per-request timeout on top of the caller's context.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHeader adds a default header sent on every request.
func WithHeader(name, value string) Option {
	return func(c *Client) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		if c.defaultHeaders == nil {
			c.defaultHeaders = make(http.Header)
		}
		c.defaultHeaders.Add(name, value)
	}
}

// WithShallowHeaders restores the legacy header semantic where caller-supplied
// headers replace the entire default set (see ShallowMergeHeaders).
func WithShallowHeaders() Option {
	return func(c *Client) {
		c.shallowHeaders = true
	}
}

// WithEndpoints overrides the three wrapper endpoint paths. Empty values keep
// the defaults.
func WithEndpoints(login, signup, newsletter string) Option {
	return func(c *Client) {
		if path := strings.TrimSpace(login); path != "" {
			c.loginPath = path
		}
		if path := strings.TrimSpace(signup); path != "" {
			c.signupPath = path
		}
		if path := strings.TrimSpace(newsletter); path != "" {
			c.newsletterPath = path
		}
	}
}

// Client is a thin JSON-over-HTTP request wrapper bound to a fixed base URL.
// Every request carries Content-Type: application/json unless the caller
// overrides it through RequestOptions.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	defaultHeaders http.Header
	shallowHeaders bool
	timeout        time.Duration

	loginPath      string
	signupPath     string
	newsletterPath string
}

// New constructs a Client for the given base URL.
func New(baseURL string, options ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("apiclient: base URL is required")
	}

	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     &http.Client{},
		loginPath:      DefaultLoginPath,
		signupPath:     DefaultSignupPath,
		newsletterPath: DefaultNewsletterPath,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

// RequestOptions carry per-call overrides. Body values are serialised as JSON
// unless already a raw byte slice.
type RequestOptions struct {
	Method  string
	Body    any
	Headers http.Header
}

// Do issues a request against baseURL+path and decodes the JSON response.
// Responses with a status outside 2xx-3xx fail with *HTTPError; transport and
// JSON decoding failures fail with *NetworkError.
func (c *Client) Do(ctx context.Context, path string, opts RequestOptions) (any, error) {
	if c == nil {
		return nil, errors.New("apiclient: client is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	reqCtx := ctx
	var cancel context.CancelFunc
	if c.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	method := strings.ToUpper(strings.TrimSpace(opts.Method))
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != nil {
		raw, ok := opts.Body.([]byte)
		if !ok {
			encoded, err := json.Marshal(opts.Body)
			if err != nil {
				return nil, &NetworkError{Op: "encode request body", Err: err}
			}
			raw = encoded
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+normalizePath(path), body)
	if err != nil {
		return nil, &NetworkError{Op: "build request", Err: err}
	}
	req.Header = c.composeHeaders(opts.Headers)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: "send request", Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, &HTTPError{Status: resp.StatusCode}
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: "read response body", Err: err}
	}

	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, &NetworkError{Op: "decode response body", Err: err}
	}
	return decoded, nil
}

// Login POSTs the raw credential fields to the login endpoint.
func (c *Client) Login(ctx context.Context, credentials map[string]string) (any, error) {
	return c.Do(ctx, c.loginPath, RequestOptions{
		Method: http.MethodPost,
		Body:   credentials,
	})
}

// Signup POSTs the raw signup fields to the signup endpoint.
func (c *Client) Signup(ctx context.Context, fields map[string]string) (any, error) {
	return c.Do(ctx, c.signupPath, RequestOptions{
		Method: http.MethodPost,
		Body:   fields,
	})
}

// SubscribeNewsletter POSTs {"email": ...} to the newsletter endpoint.
func (c *Client) SubscribeNewsletter(ctx context.Context, email string) (any, error) {
	return c.Do(ctx, c.newsletterPath, RequestOptions{
		Method: http.MethodPost,
		Body:   map[string]string{"email": email},
	})
}

func (c *Client) composeHeaders(override http.Header) http.Header {
	defaults := make(http.Header, len(c.defaultHeaders)+1)
	defaults.Set("Content-Type", contentTypeJSON)
	copyHeaders(defaults, c.defaultHeaders)

	if c.shallowHeaders {
		return ShallowMergeHeaders(defaults, override)
	}
	return MergeHeaders(defaults, override)
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}
