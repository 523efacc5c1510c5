// Package rookery holds the domain types shared between the feed
// aggregation pipeline, the local post store, and the API layer.
package rookery

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound    = errors.New("resource not found")
	ErrRateLimited = errors.New("upstream rate limited")
)

type (
	// Post is the normalized representation of one article, regardless of
	// which platform it came from. The json names are the contract with the
	// site frontend, so they stay camelCase.
	Post struct {
		ID            string            `json:"id"`
		Slug          string            `json:"slug"`
		Title         string            `json:"title"`
		Excerpt       string            `json:"excerpt"`
		Content       string            `json:"content"`
		Author        string            `json:"author"`
		Date          string            `json:"date"`
		Category      string            `json:"category"`
		Tags          []string          `json:"tags"`
		ReadTime      string            `json:"readTime"`
		Image         string            `json:"image"`
		Images        []string          `json:"images,omitempty"`
		Source        string            `json:"source"`
		ExternalLinks map[string]string `json:"externalLinks,omitempty"`

		// Only set for posts in the local store.
		UpdatedAt string `json:"updatedAt,omitempty"`
	}

	// PostStore is CRUD over the first-party posts authored through the
	// admin surface.
	PostStore interface {
		All() ([]Post, error)
		BySlug(slug string) (Post, error)
		Create(post Post) (Post, error)
		Update(id string, fields UpdatePostArgs) (Post, error)
		Delete(id string) error
	}

	// Holds the optional fields for updating a local post.
	UpdatePostArgs struct {
		Title    *string
		Content  *string
		Excerpt  *string
		Author   *string
		Category *string
		Tags     []string
		Image    *string
	}

	// PublishRecord is one row of publish history: a single attempt to
	// cross-post one article to one platform.
	PublishRecord struct {
		ID        string    `db:"id" json:"id"`
		Title     string    `db:"title" json:"title"`
		Platform  string    `db:"platform" json:"platform"`
		Status    string    `db:"status" json:"status"`
		URL       string    `db:"url" json:"url,omitempty"`
		Error     string    `db:"error" json:"error,omitempty"`
		CreatedAt time.Time `db:"created_at" json:"created_at"`
	}

	PublishLog interface {
		InsertRecords(ctx context.Context, records []PublishRecord) error
		Records(ctx context.Context, args RecordsArgs) ([]PublishRecord, error)
	}

	// Optional filters when listing publish history.
	RecordsArgs struct {
		Platform string
		Limit    uint64
	}
)

const (
	PublishStatusOK    = "ok"
	PublishStatusError = "error"
)
