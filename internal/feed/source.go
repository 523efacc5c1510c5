// Package feed fetches the academy's blog feeds from the publishing
// platforms we cross-post to, normalizes them into [rookery.Post] records,
// and caches the result per source.
package feed

// Which parser a source's feed document goes through.
type parserKind int

const (
	// Tolerant regex extraction over the raw RSS text.
	kindRegexRSS parserKind = iota
	// gofeed-backed parsing for the platforms with well-formed feeds.
	kindGofeed
)

// Source names. These show up in the Post.Source field and in the
// /api/blog/{source} path.
const (
	SourceSubstack = "substack"
	SourceMedium   = "medium"
	SourceDevto    = "devto"
	SourceLocal    = "local"
)

// Source describes one external publishing platform feed and the defaults
// applied to posts that come from it.
type Source struct {
	Name    string
	FeedURL string
	kind    parserKind

	DefaultAuthor    string
	DefaultCategory  string
	PlaceholderImage string

	// Tags appended to every post from this source, on top of whatever the
	// feed itself carries.
	ExtraTags []string

	// Platform name -> URL pattern with one %s for the slug. These are
	// cross-posting stubs: they are never verified to resolve.
	LinkTemplates map[string]string
}

// WithURL returns a copy of the source pointing at a different feed URL.
func (s Source) WithURL(url string) Source {
	s.FeedURL = url
	return s
}

// DefaultSources returns the registry of platforms the academy publishes to.
func DefaultSources() map[string]Source {
	return map[string]Source{
		SourceSubstack: {
			Name:             SourceSubstack,
			FeedURL:          "https://rookeryacademy.substack.com/feed",
			kind:             kindRegexRSS,
			DefaultAuthor:    "Rookery Academy",
			DefaultCategory:  "Chess",
			PlaceholderImage: "/images/blog/substack-placeholder.jpg",
			ExtraTags:        []string{"chess for kids", "coding for kids"},
			LinkTemplates: map[string]string{
				"medium": "https://medium.com/@rookeryacademy/%s",
				"devto":  "https://dev.to/rookeryacademy/%s",
			},
		},
		SourceMedium: {
			Name:             SourceMedium,
			FeedURL:          "https://medium.com/feed/@rookeryacademy",
			kind:             kindGofeed,
			DefaultAuthor:    "Rookery Academy",
			DefaultCategory:  "Coding",
			PlaceholderImage: "/images/blog/medium-placeholder.jpg",
			LinkTemplates: map[string]string{
				"substack": "https://rookeryacademy.substack.com/p/%s",
				"devto":    "https://dev.to/rookeryacademy/%s",
			},
		},
		SourceDevto: {
			Name:             SourceDevto,
			FeedURL:          "https://dev.to/feed/rookeryacademy",
			kind:             kindGofeed,
			DefaultAuthor:    "Rookery Academy",
			DefaultCategory:  "Coding",
			PlaceholderImage: "/images/blog/devto-placeholder.jpg",
			LinkTemplates: map[string]string{
				"substack": "https://rookeryacademy.substack.com/p/%s",
				"medium":   "https://medium.com/@rookeryacademy/%s",
			},
		},
	}
}
