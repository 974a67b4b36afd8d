package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/user/alttext-service/internal/proxy"
)

var ErrUnexpectedStatus = errors.New("unexpected status code")

// PageFetcher retrieves the raw markup of a page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher fetches pages over HTTP with a fixed client identity.
type HTTPFetcher struct {
	mu       sync.Mutex // guards proxy switching on the shared client
	client   *resty.Client
	identity *proxy.Manager
}

func NewHTTPFetcher(identity *proxy.Manager, timeout time.Duration) *HTTPFetcher {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", identity.GetUserAgent()).
		SetHeader("Accept", "text/html,application/xhtml+xml")
	return &HTTPFetcher{client: client, identity: identity}
}

// Fetch returns the body of url. Any non-2xx response is an error.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if p := f.identity.GetProxy(); p != "" {
		f.client.SetProxy(p)
	}

	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL %s: %w", url, err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("%w %d for %s", ErrUnexpectedStatus, resp.StatusCode(), url)
	}
	return resp.String(), nil
}
