package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rookeryhq/rookery/internal/rookery"
)

const userAgent = "RookerySiteBot/1.0 (+https://rookery.academy)"

// Fetcher downloads a raw feed document over HTTP.
//
// The request headers tell every intermediary to skip its cache: freshness
// is enforced by our own TTL, not by HTTP caching.
type Fetcher struct {
	client *http.Client
}

func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Fetcher{client: client}
}

// Fetch GETs the feed URL and returns the raw body.
//
// A 429 comes back wrapping [rookery.ErrRateLimited] so the caller can apply
// the stale-cache fallback. Any other non-2xx status, or an empty 2xx body,
// is an error. No retries happen at this layer.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Expires", "0")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error getting feed url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("fetching %s: %w", url, rookery.ErrRateLimited)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return "", fmt.Errorf("error reading feed body: %w", err)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("empty feed body from %s", url)
	}

	return string(body), nil
}
