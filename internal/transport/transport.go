package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agentx-labs/bootkeeper/internal/faults"
)

// DefaultMaxBytes caps a single download.
const DefaultMaxBytes int64 = 64 << 20

// Transport downloads a document addressed relative to a base location.
type Transport interface {
	Get(ctx context.Context, path string) ([]byte, error)
}

// HTTPTransport fetches files over HTTP(S) relative to a base URL.
type HTTPTransport struct {
	base       *url.URL
	httpClient *http.Client
	token      string
	userAgent  string
	maxBytes   int64
}

// Option configures an HTTPTransport.
type Option func(*HTTPTransport)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(t *HTTPTransport) {
		t.httpClient = c
	}
}

// WithTimeout bounds each request, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(t *HTTPTransport) {
		if d > 0 {
			c := *t.httpClient
			c.Timeout = d
			t.httpClient = &c
		}
	}
}

// WithToken sends a bearer token with every request.
func WithToken(token string) Option {
	return func(t *HTTPTransport) {
		t.token = token
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(t *HTTPTransport) {
		t.userAgent = ua
	}
}

// WithMaxBytes overrides the per-download size cap.
func WithMaxBytes(n int64) Option {
	return func(t *HTTPTransport) {
		t.maxBytes = n
	}
}

// NewHTTP creates an HTTPTransport rooted at baseURL.
func NewHTTP(baseURL string, opts ...Option) (*HTTPTransport, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL %q: %w", baseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base URL %q must use http or https", baseURL)
	}

	t := &HTTPTransport{
		base:       base,
		httpClient: &http.Client{},
		userAgent:  "bootkeeper-supervisor",
		maxBytes:   DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// URL resolves path against the base URL.
func (t *HTTPTransport) URL(path string) (string, error) {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", fmt.Errorf("parsing path %q: %w", path, err)
	}
	return t.base.ResolveReference(ref).String(), nil
}

// Get implements Transport. Any failure is wrapped with faults.ErrNetwork.
func (t *HTTPTransport) Get(ctx context.Context, path string) ([]byte, error) {
	target, err := t.URL(path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrNetwork, "resolving "+path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, faults.Wrap(faults.ErrNetwork, "creating request for "+target, err)
	}
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Cache-Control", "no-cache")
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, faults.Wrap(faults.ErrNetwork, "fetching "+target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, faults.Wrap(faults.ErrNetwork, "fetching "+target, fmt.Errorf("server returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBytes+1))
	if err != nil {
		return nil, faults.Wrap(faults.ErrNetwork, "reading "+target, err)
	}
	if int64(len(body)) > t.maxBytes {
		return nil, faults.Wrap(faults.ErrNetwork, "reading "+target, fmt.Errorf("body exceeds %d bytes", t.maxBytes))
	}
	if resp.ContentLength >= 0 && int64(len(body)) != resp.ContentLength {
		return nil, faults.Wrap(faults.ErrNetwork, "reading "+target, fmt.Errorf("short body: got %d of %d bytes", len(body), resp.ContentLength))
	}

	return body, nil
}
