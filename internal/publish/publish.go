// Package publish fans an article out to the publishing platforms the
// academy cross-posts to.
//
// Each platform succeeds or fails on its own: a missing credential or a dead
// platform yields a per-platform error object, never a failure of the whole
// request. Outcomes are appended to the publish history.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/rookeryhq/rookery/internal/rookery"
)

const (
	PlatformDevto    = "devto"
	PlatformMedium   = "medium"
	PlatformHashnode = "hashnode"
)

type (
	Config struct {
		DevtoAPIKey   string
		MediumToken   string
		HashnodeToken string
	}

	// Article is the content being cross-posted.
	Article struct {
		Title          string
		Content        string
		Excerpt        string
		Tags           []string
		Category       string
		SEOTitle       string
		SEODescription string
		SEOKeywords    []string
	}

	// Result is the outcome for one platform.
	Result struct {
		Platform string `json:"platform"`
		Success  bool   `json:"success"`
		URL      string `json:"url,omitempty"`
		Error    string `json:"error,omitempty"`
	}

	Publisher struct {
		cfg    Config
		client *http.Client
		log    rookery.PublishLog
	}
)

func New(cfg Config, client *http.Client, log rookery.PublishLog) *Publisher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Publisher{cfg: cfg, client: client, log: log}
}

// Publish sends the article to each requested platform and records the
// outcomes.
func (p *Publisher) Publish(ctx context.Context, article Article, platforms []string) []Result {
	results := make([]Result, 0, len(platforms))
	for _, platform := range platforms {
		var (
			url string
			err error
		)
		switch platform {
		case PlatformDevto:
			url, err = p.publishDevto(ctx, article)
		case PlatformMedium:
			url, err = p.publishMedium(ctx, article)
		case PlatformHashnode:
			url, err = p.publishHashnode(ctx, article)
		default:
			err = fmt.Errorf("unknown platform %q", platform)
		}

		result := Result{Platform: platform, Success: err == nil, URL: url}
		if err != nil {
			result.Error = err.Error()
		}
		results = append(results, result)
	}

	p.record(ctx, article.Title, results)

	return results
}

// record appends the outcomes to the history. A history write failure is
// logged but doesn't fail the publish: the posts are already out.
func (p *Publisher) record(ctx context.Context, title string, results []Result) {
	if p.log == nil {
		return
	}

	records := make([]rookery.PublishRecord, 0, len(results))
	for _, res := range results {
		status := rookery.PublishStatusOK
		if !res.Success {
			status = rookery.PublishStatusError
		}
		records = append(records, rookery.PublishRecord{
			Title:    title,
			Platform: res.Platform,
			Status:   status,
			URL:      res.URL,
			Error:    res.Error,
		})
	}

	if err := p.log.InsertRecords(ctx, records); err != nil {
		slog.Error("error recording publish history", "error", err)
	}
}

// postJSON issues one JSON request with fibonacci backoff on 5xx responses.
// 4xx responses are permanent failures.
func (p *Publisher) postJSON(ctx context.Context, url string, headers map[string]string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("error encoding request: %w", err)
	}

	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := p.client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("status %d from %s", resp.StatusCode, url))
		}
		if resp.StatusCode >= 300 {
			byts, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			return fmt.Errorf("status %d from %s: %s", resp.StatusCode, url, byts)
		}

		if out == nil {
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	})
}
