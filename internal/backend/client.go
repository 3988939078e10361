package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// DefaultSite is the backend site queried when no site is configured.
const DefaultSite = "datadoghq.com"

// Client talks to the synthetics backend.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

type options struct {
	verbose bool
	// writer controls where verbose HTTP logs are written (typically stderr)
	// so reporter output on stdout stays clean and tests can capture logs.
	writer  io.Writer
	baseURL string
	appKey  string
}

type Option func(*options)

func WithVerbose(enabled bool, writer io.Writer) Option {
	return func(o *options) {
		o.verbose = enabled
		o.writer = writer
	}
}

// WithBaseURL overrides the site-derived API base URL (used by tests and
// by deployments behind a proxy).
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// WithAppKey attaches an application key sent alongside the API token on
// every request.
func WithAppKey(appKey string) Option {
	return func(o *options) {
		o.appKey = appKey
	}
}

// loggingRoundTripper wraps an underlying transport and emits one line per
// request and response (including latency) when verbose logging is enabled.
type loggingRoundTripper struct {
	base http.RoundTripper
	w    io.Writer
}

func (t *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	if t.w != nil {
		_, _ = fmt.Fprintf(t.w, "[verbose] backend api: %s %s\n", req.Method, req.URL.String())
	}
	resp, err := t.base.RoundTrip(req)
	dur := time.Since(start)
	if t.w != nil {
		if err != nil {
			_, _ = fmt.Fprintf(t.w, "[verbose] backend api: error after %s: %v\n", dur.Truncate(time.Millisecond), err)
		} else {
			_, _ = fmt.Fprintf(t.w, "[verbose] backend api: %d %s (%s)\n", resp.StatusCode, http.StatusText(resp.StatusCode), dur.Truncate(time.Millisecond))
		}
	}
	return resp, err
}

// appKeyRoundTripper adds the application-key header on top of the bearer
// token installed by the oauth2 transport.
type appKeyRoundTripper struct {
	base   http.RoundTripper
	appKey string
}

func (t *appKeyRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("DD-APPLICATION-KEY", t.appKey)
	return t.base.RoundTrip(clone)
}

// NewClient builds a backend client for the given site, authenticated with
// the given API token.
func NewClient(ctx context.Context, site, token string, opts ...Option) (*Client, error) {
	if ctx == nil {
		return nil, fmt.Errorf("backend client: ctx is nil")
	}

	o := &options{}
	for _, apply := range opts {
		if apply != nil {
			apply(o)
		}
	}
	if o.verbose && o.writer == nil {
		o.writer = os.Stderr
	}
	if site == "" {
		site = DefaultSite
	}
	baseURL := o.baseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://api.%s/api/v1", site)
	}
	baseURL = strings.TrimRight(baseURL, "/")

	transport := http.DefaultTransport
	if o.verbose {
		transport = &loggingRoundTripper{base: transport, w: o.writer}
	}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		transport = &oauth2.Transport{Source: ts, Base: transport}
	}
	if o.appKey != "" {
		transport = &appKeyRoundTripper{base: transport, appKey: o.appKey}
	}
	// Always provide an http.Client so verbose logging works even without a token.
	tc := &http.Client{Transport: transport}

	return &Client{
		BaseURL: baseURL,
		HTTP:    tc,
	}, nil
}
