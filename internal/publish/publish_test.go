package publish

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rookeryhq/rookery/internal/rookery"
)

// fakeLog captures history writes in memory.
type fakeLog struct {
	records []rookery.PublishRecord
}

func (f *fakeLog) InsertRecords(ctx context.Context, records []rookery.PublishRecord) error {
	f.records = append(f.records, records...)
	return nil
}

func (f *fakeLog) Records(ctx context.Context, args rookery.RecordsArgs) ([]rookery.PublishRecord, error) {
	return f.records, nil
}

func TestPublishUnconfiguredCredentials(t *testing.T) {
	log := &fakeLog{}
	pub := New(Config{}, nil, log)

	results := pub.Publish(context.Background(), Article{Title: "T", Content: "C"},
		[]string{PlatformDevto, PlatformMedium, PlatformHashnode})

	require.Len(t, results, 3)
	for _, res := range results {
		assert.False(t, res.Success, res.Platform)
		assert.Contains(t, res.Error, "not configured")
	}

	// Failures still land in the history.
	require.Len(t, log.records, 3)
	for _, rec := range log.records {
		assert.Equal(t, rookery.PublishStatusError, rec.Status)
		assert.Equal(t, "T", rec.Title)
	}
}

func TestPublishUnknownPlatform(t *testing.T) {
	pub := New(Config{}, nil, nil)

	results := pub.Publish(context.Background(), Article{Title: "T"}, []string{"myspace"})
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Error, "unknown platform")
}

func TestPublishDevto(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("api-key"))

		var body struct {
			Article struct {
				Title        string   `json:"title"`
				BodyMarkdown string   `json:"body_markdown"`
				Tags         []string `json:"tags"`
			} `json:"article"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Checkmate Patterns", body.Article.Title)

		json.NewEncoder(w).Encode(map[string]string{"url": "https://dev.to/rookeryacademy/checkmate-patterns"})
	}))
	defer ts.Close()

	oldURL := devtoURL
	devtoURL = ts.URL
	defer func() { devtoURL = oldURL }()

	log := &fakeLog{}
	pub := New(Config{DevtoAPIKey: "test-key"}, nil, log)

	results := pub.Publish(context.Background(), Article{
		Title:   "Checkmate Patterns",
		Content: "## Back rank",
		Tags:    []string{"chess"},
	}, []string{PlatformDevto})

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Equal(t, "https://dev.to/rookeryacademy/checkmate-patterns", results[0].URL)

	require.Len(t, log.records, 1)
	assert.Equal(t, rookery.PublishStatusOK, log.records[0].Status)
	assert.Equal(t, PlatformDevto, log.records[0].Platform)
}

func TestPublishRetriesServerErrors(t *testing.T) {
	var hits atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"url": "https://dev.to/p/1"})
	}))
	defer ts.Close()

	oldURL := devtoURL
	devtoURL = ts.URL
	defer func() { devtoURL = oldURL }()

	pub := New(Config{DevtoAPIKey: "k"}, nil, nil)
	results := pub.Publish(context.Background(), Article{Title: "T", Content: "C"}, []string{PlatformDevto})

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.EqualValues(t, 3, hits.Load())
}

func TestPublishDoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer ts.Close()

	oldURL := devtoURL
	devtoURL = ts.URL
	defer func() { devtoURL = oldURL }()

	pub := New(Config{DevtoAPIKey: "k"}, nil, nil)
	results := pub.Publish(context.Background(), Article{Title: "T", Content: "C"}, []string{PlatformDevto})

	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.EqualValues(t, 1, hits.Load())
}

func TestPublishMedium(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/me":
			json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"id": "author-1"}})
		case "/users/author-1/posts":
			json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"url": "https://medium.com/@rookeryacademy/p"}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	oldURL := mediumURL
	mediumURL = ts.URL
	defer func() { mediumURL = oldURL }()

	pub := New(Config{MediumToken: "tok"}, nil, nil)
	results := pub.Publish(context.Background(), Article{Title: "T", Content: "C"}, []string{PlatformMedium})

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Equal(t, "https://medium.com/@rookeryacademy/p", results[0].URL)
}

func TestPublishHashnodeGraphQLErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]string{{"message": "publication not found"}},
		})
	}))
	defer ts.Close()

	oldURL := hashnodeURL
	hashnodeURL = ts.URL
	defer func() { hashnodeURL = oldURL }()

	pub := New(Config{HashnodeToken: "tok"}, nil, nil)
	results := pub.Publish(context.Background(), Article{Title: "T", Content: "C"}, []string{PlatformHashnode})

	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Error, "publication not found")
}

func TestHashnodeTags(t *testing.T) {
	assert.Equal(t, []map[string]string{
		{"slug": "chess-for-kids", "name": "Chess For Kids"},
	}, hashnodeTags([]string{"Chess For Kids"}))
}
