package offline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
)

// Fetcher performs a request against the network.
type Fetcher interface {
	Fetch(ctx context.Context, r *http.Request) (*http.Response, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, r *http.Request) (*http.Response, error)

func (f FetcherFunc) Fetch(ctx context.Context, r *http.Request) (*http.Response, error) {
	return f(ctx, r)
}

// HTTPFetcher forwards requests to a remote origin.
type HTTPFetcher struct {
	Origin *url.URL
	Client *http.Client
}

// NewHTTPFetcher creates a fetcher for origin, e.g. "http://localhost:8080".
// A nil client means http.DefaultClient.
func NewHTTPFetcher(origin string, client *http.Client) (*HTTPFetcher, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("invalid origin %q: %w", origin, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid origin %q: scheme and host are required", origin)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{Origin: u, Client: client}, nil
}

// hopHeaders are not forwarded.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

func (f *HTTPFetcher) Fetch(ctx context.Context, r *http.Request) (*http.Response, error) {
	out := r.Clone(ctx)
	target := *f.Origin
	target.Path = r.URL.Path
	target.RawPath = r.URL.RawPath
	target.RawQuery = r.URL.RawQuery
	out.URL = &target
	out.Host = f.Origin.Host
	out.RequestURI = ""
	for _, h := range hopHeaders {
		out.Header.Del(h)
	}
	return f.Client.Do(out)
}

// HandlerFetcher serves requests from an in-process handler, so the web origin
// and the offline proxy can share one server.
type HandlerFetcher struct {
	Handler http.Handler
}

func (f *HandlerFetcher) Fetch(ctx context.Context, r *http.Request) (*http.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec := httptest.NewRecorder()
	req := r.Clone(ctx)
	if req.RequestURI == "" {
		req.RequestURI = req.URL.RequestURI()
	}
	f.Handler.ServeHTTP(rec, req)
	return rec.Result(), nil
}

// newGet builds a GET request for a cache key.
func newGet(ctx context.Context, key string) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, http.MethodGet, key, nil)
}
