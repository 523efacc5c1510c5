package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rookeryhq/rookery/internal/rookery"
)

// How long a successful fetch stays fresh before the next read triggers a
// refresh attempt.
const defaultTTL = 30 * time.Minute

// Result is what the aggregation endpoint hands back to a caller.
type Result struct {
	Posts     []rookery.Post
	FetchedAt time.Time

	// Cached is true when the posts came out of the cache rather than a
	// fresh upstream fetch (including the stale-fallback path).
	Cached bool

	// Warning is set when stale posts were served because the refresh
	// failed.
	Warning string
}

type cacheEntry struct {
	posts     []rookery.Post
	fetchedAt time.Time
}

// Aggregator orchestrates fetch -> parse -> normalize -> cache per source.
//
// The cache is a per-source entry replaced wholesale on every successful
// refresh; it lives for the process lifetime and is never persisted.
// Concurrent reads that find a stale entry share a single upstream fetch.
type Aggregator struct {
	sources map[string]Source
	fetcher *Fetcher
	ttl     time.Duration
	now     func() time.Time

	group   singleflight.Group
	mu      sync.Mutex
	entries map[string]cacheEntry
}

func NewAggregator(sources map[string]Source, client *http.Client) *Aggregator {
	return &Aggregator{
		sources: sources,
		fetcher: NewFetcher(client),
		ttl:     defaultTTL,
		now:     time.Now,
		entries: map[string]cacheEntry{},
	}
}

// Sources reports whether the aggregator knows the named source.
func (a *Aggregator) HasSource(name string) bool {
	_, ok := a.sources[name]
	return ok
}

// Posts returns the post list for a source, consulting the cache first.
//
// Failure policy: when the refresh fails and a previous good value exists,
// the stale posts are served with a warning and the timestamp is not
// advanced. When the cache is empty the error propagates; callers can pick
// the status off [rookery.ErrRateLimited].
func (a *Aggregator) Posts(ctx context.Context, source string) (Result, error) {
	src, ok := a.sources[source]
	if !ok {
		return Result{}, fmt.Errorf("unknown source %q: %w", source, rookery.ErrNotFound)
	}

	if entry, ok := a.cached(source); ok {
		return Result{Posts: entry.posts, FetchedAt: entry.fetchedAt, Cached: true}, nil
	}

	// Stale or empty: refresh, coalescing concurrent requests into one
	// upstream fetch.
	v, err, _ := a.group.Do(source, func() (any, error) {
		// Another request may have refreshed while we waited on the flight
		// group.
		if entry, ok := a.cached(source); ok {
			return entry, nil
		}
		return a.refresh(ctx, src)
	})
	if err != nil {
		if entry, ok := a.anyEntry(source); ok {
			slog.Warn("serving stale posts", "source", source, "error", err)
			return Result{
				Posts:     entry.posts,
				FetchedAt: entry.fetchedAt,
				Cached:    true,
				Warning:   warningFor(err),
			}, nil
		}
		return Result{}, err
	}

	entry := v.(cacheEntry)
	return Result{Posts: entry.posts, FetchedAt: entry.fetchedAt, Cached: false}, nil
}

func warningFor(err error) string {
	return fmt.Sprintf("showing cached posts, refresh failed: %s", err)
}

// cached returns the entry only while it's fresh.
func (a *Aggregator) cached(source string) (cacheEntry, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	entry, ok := a.entries[source]
	if !ok || a.now().Sub(entry.fetchedAt) >= a.ttl {
		return cacheEntry{}, false
	}
	return entry, true
}

// anyEntry returns the entry regardless of freshness, for the fallback path.
func (a *Aggregator) anyEntry(source string) (cacheEntry, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	entry, ok := a.entries[source]
	return entry, ok
}

// refresh runs the full pipeline and replaces the cache entry on success.
func (a *Aggregator) refresh(ctx context.Context, src Source) (cacheEntry, error) {
	raw, err := a.fetcher.Fetch(ctx, src.FeedURL)
	if err != nil {
		return cacheEntry{}, err
	}

	items, diags, err := parseDocument(src, raw)
	if err != nil {
		return cacheEntry{}, err
	}

	now := a.now()
	posts := make([]rookery.Post, 0, len(items))
	for _, item := range items {
		post, itemDiags := normalize(src, item, now)
		diags = append(diags, itemDiags...)
		posts = append(posts, post)
	}

	for _, d := range diags {
		slog.Warn("feed item diagnostic", "source", src.Name, "item", d.Item, "problem", d.Problem)
	}

	entry := cacheEntry{posts: posts, fetchedAt: now}
	a.mu.Lock()
	a.entries[src.Name] = entry
	a.mu.Unlock()

	slog.Info("feed refreshed", "source", src.Name, "posts", len(posts), "diagnostics", len(diags))

	return entry, nil
}
