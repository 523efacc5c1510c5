// Package localstore is the JSON-file-backed store for first-party posts
// authored through the admin surface. The file is the sole store of record;
// every write rewrites the whole collection.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rookeryhq/rookery/internal/feed"
	"github.com/rookeryhq/rookery/internal/rookery"
)

// Store holds posts in a single JSON array on disk, most-recent-first.
//
// The mutex serializes access within this process; a second process writing
// the same file can still race and lose updates.
type Store struct {
	path string
	mu   sync.Mutex
}

var _ rookery.PostStore = (*Store)(nil)

func New(path string) *Store {
	return &Store{path: path}
}

// load reads the collection. A missing file is a legitimately empty store;
// an unreadable or corrupt file is an error, so real I/O problems don't get
// masked as "no posts".
func (s *Store) load() ([]rookery.Post, error) {
	byts, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []rookery.Post{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading posts file: %w", err)
	}

	var posts []rookery.Post
	if err := json.Unmarshal(byts, &posts); err != nil {
		return nil, fmt.Errorf("error decoding posts file: %w", err)
	}

	return posts, nil
}

// save rewrites the whole file.
func (s *Store) save(posts []rookery.Post) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating posts dir: %w", err)
		}
	}

	byts, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding posts: %w", err)
	}
	if err := os.WriteFile(s.path, byts, 0o644); err != nil {
		return fmt.Errorf("error writing posts file: %w", err)
	}

	return nil
}

func (s *Store) All() ([]rookery.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) BySlug(slug string) (rookery.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.load()
	if err != nil {
		return rookery.Post{}, err
	}
	for _, post := range posts {
		if post.Slug == slug {
			return post, nil
		}
	}

	return rookery.Post{}, rookery.ErrNotFound
}

// Create assigns an id and slug and prepends the post, keeping
// most-recent-first ordering.
func (s *Store) Create(post rookery.Post) (rookery.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.load()
	if err != nil {
		return rookery.Post{}, err
	}

	now := time.Now().UTC()
	post.ID = uuid.NewString()
	post.Slug = feed.Slugify(post.Title)
	post.Source = feed.SourceLocal
	if post.Date == "" {
		post.Date = now.Format("2006-01-02")
	}
	if post.Excerpt == "" {
		post.Excerpt = feed.Excerpt(post.Content)
	}
	if post.ReadTime == "" {
		post.ReadTime = feed.ReadTime(post.Content)
	}
	post.UpdatedAt = now.Format(time.RFC3339)

	posts = append([]rookery.Post{post}, posts...)
	if err := s.save(posts); err != nil {
		return rookery.Post{}, err
	}

	return post, nil
}

// Update merges the provided fields over the existing record. The slug is
// regenerated only when the title changes.
func (s *Store) Update(id string, args rookery.UpdatePostArgs) (rookery.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.load()
	if err != nil {
		return rookery.Post{}, err
	}

	for i, post := range posts {
		if post.ID != id {
			continue
		}

		if args.Title != nil && *args.Title != post.Title {
			post.Title = *args.Title
			post.Slug = feed.Slugify(post.Title)
		}
		if args.Content != nil {
			post.Content = *args.Content
		}
		if args.Excerpt != nil {
			post.Excerpt = *args.Excerpt
		}
		if args.Author != nil {
			post.Author = *args.Author
		}
		if args.Category != nil {
			post.Category = *args.Category
		}
		if args.Tags != nil {
			post.Tags = args.Tags
		}
		if args.Image != nil {
			post.Image = *args.Image
		}
		post.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

		posts[i] = post
		if err := s.save(posts); err != nil {
			return rookery.Post{}, err
		}

		return post, nil
	}

	return rookery.Post{}, rookery.ErrNotFound
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.load()
	if err != nil {
		return err
	}

	kept := posts[:0]
	for _, post := range posts {
		if post.ID != id {
			kept = append(kept, post)
		}
	}
	if len(kept) == len(posts) {
		return rookery.ErrNotFound
	}

	return s.save(kept)
}
