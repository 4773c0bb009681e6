// Package web reads the workflow configuration and its fragments over HTTP,
// the way a browser-hosted wizard fetches them from its own origin.
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/walkthrough/internal/logging"
	"github.com/aretw0/walkthrough/pkg/domain"
)

const (
	// DefaultTimeout bounds a single request when the caller's context has no deadline.
	DefaultTimeout = 10 * time.Second
	// MaxBodySize caps configuration and fragment bodies.
	MaxBodySize = 4 << 20
)

// ErrStatus reports a non-2xx response.
var ErrStatus = errors.New("unexpected HTTP status")

// Option configures a ConfigSource or a Fetcher.
type Option func(*client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *client) {
		cl.http = c
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(cl *client) {
		cl.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cl *client) {
		cl.logger = logger
	}
}

type client struct {
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

func newClient(opts []Option) client {
	c := client{
		http:    http.DefaultClient,
		timeout: DefaultTimeout,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c client) get(ctx context.Context, target string) ([]byte, error) {
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	c.logger.Debug("web fetch", "url", target, "status", resp.StatusCode, "duration", time.Since(start))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxBodySize {
		return nil, fmt.Errorf("response larger than %d bytes", MaxBodySize)
	}
	return data, nil
}

// ConfigSource implements ports.ConfigSource over an absolute URL.
type ConfigSource struct {
	url    string
	client client
}

// NewConfigSource creates a source for the document at rawURL.
func NewConfigSource(rawURL string, opts ...Option) (*ConfigSource, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid config url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid config url %q: scheme must be http or https", rawURL)
	}
	return &ConfigSource{url: u.String(), client: newClient(opts)}, nil
}

// Load fetches the configuration document.
func (s *ConfigSource) Load(ctx context.Context) ([]byte, error) {
	data, err := s.client.get(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", s.url, err)
	}
	return data, nil
}

// Name returns the configuration URL.
func (s *ConfigSource) Name() string {
	return s.url
}

// BaseURL returns the directory of the configuration URL, where relative
// fragment references resolve.
func (s *ConfigSource) BaseURL() string {
	i := strings.LastIndex(s.url, "/")
	return s.url[:i+1]
}

// Fetcher implements ports.FragmentFetcher by resolving references against
// a base URL.
type Fetcher struct {
	base   *url.URL
	client client
}

// NewFetcher creates a fetcher resolving references against baseURL.
func NewFetcher(baseURL string, opts ...Option) (*Fetcher, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("invalid base url %q: must be absolute", baseURL)
	}
	return &Fetcher{base: u, client: newClient(opts)}, nil
}

// Fetch retrieves the fragment named by ref. Failures wrap domain.ErrFragmentFetch.
func (f *Fetcher) Fetch(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("%w: empty fragment reference", domain.ErrFragmentFetch)
	}
	u, err := f.base.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrFragmentFetch, ref, err)
	}
	data, err := f.client.get(ctx, u.String())
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %s: %v", domain.ErrFragmentFetch, ref, err)
	}
	return string(data), nil
}
