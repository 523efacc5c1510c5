package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	for name, tc := range map[string]struct {
		in   string
		want string
	}{
		"simple":        {"Hello World", "hello-world"},
		"punctuation":   {"Chess & Coding: A Kid's Guide!", "chess-coding-a-kids-guide"},
		"extra spaces":  {"  Too   many    spaces  ", "too-many-spaces"},
		"hyphen runs":   {"already - hyphen -- ated", "already-hyphen-ated"},
		"unicode drops": {"Café ☕ Time", "caf-time"},
		"empty":         {"", ""},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, Slugify(tc.in))
		})
	}
}

func TestSlugifyIsDeterministic(t *testing.T) {
	title := "The Knight's Tour, Explained For 8-Year-Olds"
	first := Slugify(title)
	for range 10 {
		assert.Equal(t, first, Slugify(title))
	}
	assert.Regexp(t, `^[a-z0-9-]*$`, first)
}

func TestExcerpt(t *testing.T) {
	short := "A short description."
	assert.Equal(t, short, Excerpt(short))

	long := strings.Repeat("a", 250)
	got := Excerpt(long)
	assert.Len(t, got, 203)
	assert.True(t, strings.HasSuffix(got, "..."))

	// Truncation counts runes, not bytes.
	wide := strings.Repeat("é", 250)
	assert.Equal(t, strings.Repeat("é", 200)+"...", Excerpt(wide))
}

func TestReadTime(t *testing.T) {
	assert.Equal(t, "0 min read", ReadTime(""))
	assert.Equal(t, "1 min read", ReadTime("one two three"))
	assert.Equal(t, "1 min read", ReadTime(strings.Repeat("word ", 200)))
	assert.Equal(t, "2 min read", ReadTime(strings.Repeat("word ", 201)))
}

func TestPickImage(t *testing.T) {
	inline := []string{"https://cdn.example.com/inline.png"}

	assert.Equal(t, "https://cdn.example.com/cover.png", pickImage("https://cdn.example.com/cover.png", inline, "/p.jpg"))
	assert.Equal(t, "https://cdn.example.com/inline.png", pickImage("", inline, "/p.jpg"))
	assert.Equal(t, "/p.jpg", pickImage("", nil, "/p.jpg"))

	// Data-URI enclosures are never used as covers.
	assert.Equal(t, "https://cdn.example.com/inline.png", pickImage("data:image/png;base64,AAAA", inline, "/p.jpg"))
}

func TestInlineImagesSkipsDataURIs(t *testing.T) {
	content := `<p><img src="data:image/gif;base64,R0lGOD"/></p>` +
		`<img src='https://cdn.example.com/one.png'>` +
		`<IMG SRC="https://cdn.example.com/two.png">`

	assert.Equal(t, []string{
		"https://cdn.example.com/one.png",
		"https://cdn.example.com/two.png",
	}, inlineImages(content))
}

func TestNormalizeDate(t *testing.T) {
	got, ok := normalizeDate("Mon, 02 Jan 2023 15:04:05 +0000")
	require.True(t, ok)
	assert.Equal(t, "2023-01-02", got)

	got, ok = normalizeDate("2023-06-15T10:30:00Z")
	require.True(t, ok)
	assert.Equal(t, "2023-06-15", got)

	// Unparsable dates are kept verbatim so nothing is silently lost.
	got, ok = normalizeDate("sometime last tuesday")
	assert.False(t, ok)
	assert.Equal(t, "sometime last tuesday", got)
}

func TestNormalize(t *testing.T) {
	src := Source{
		Name:             SourceSubstack,
		DefaultAuthor:    "Rookery Academy",
		DefaultCategory:  "Chess",
		PlaceholderImage: "/images/blog/substack-placeholder.jpg",
		ExtraTags:        []string{"chess for kids"},
		LinkTemplates: map[string]string{
			"medium": "https://medium.com/@rookeryacademy/%s",
		},
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	item := rawItem{
		Title:       "Opening Traps Every Kid Should Know",
		Link:        "https://rookeryacademy.substack.com/p/opening-traps",
		GUID:        "guid-123",
		Description: "Three traps and how to dodge them.",
		PubDate:     "Mon, 02 Jan 2023 15:04:05 +0000",
		Categories:  []string{"Openings"},
		Content:     `<p>Full text</p><img src="https://cdn.example.com/board.png">`,
	}

	post, diags := normalize(src, item, now)
	require.Empty(t, diags)

	assert.Equal(t, "guid-123", post.ID)
	assert.Equal(t, "opening-traps-every-kid-should-know", post.Slug)
	assert.Equal(t, "Three traps and how to dodge them.", post.Excerpt)
	assert.Equal(t, "Rookery Academy", post.Author)
	assert.Equal(t, "2023-01-02", post.Date)
	assert.Equal(t, "Openings", post.Category)
	assert.Equal(t, []string{"Openings", "chess for kids"}, post.Tags)
	assert.Equal(t, "1 min read", post.ReadTime)
	assert.Equal(t, "https://cdn.example.com/board.png", post.Image)
	assert.Equal(t, SourceSubstack, post.Source)
	assert.Equal(t, "https://medium.com/@rookeryacademy/opening-traps-every-kid-should-know", post.ExternalLinks["medium"])
}

func TestNormalizeFallbacks(t *testing.T) {
	src := Source{
		Name:             SourceMedium,
		DefaultAuthor:    "Rookery Academy",
		DefaultCategory:  "Coding",
		PlaceholderImage: "/images/blog/medium-placeholder.jpg",
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// No guid: the link is the id. No description: content is stripped for
	// the excerpt. No categories: the source default applies.
	post, diags := normalize(src, rawItem{
		Title:   "Scratch To Python",
		Link:    "https://medium.com/@rookeryacademy/scratch-to-python",
		Content: "<p>From blocks to <b>real</b> code.</p>",
		PubDate: "not a date",
	}, now)

	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Problem, "unparsable pubDate")

	assert.Equal(t, "https://medium.com/@rookeryacademy/scratch-to-python", post.ID)
	assert.Equal(t, "From blocks to real code.", post.Excerpt)
	assert.Equal(t, "Coding", post.Category)
	assert.Equal(t, "/images/blog/medium-placeholder.jpg", post.Image)
	assert.Equal(t, "not a date", post.Date)

	// Nothing identifying at all: a process-local id is generated.
	post, _ = normalize(src, rawItem{Title: "Untitled"}, now)
	assert.NotEmpty(t, post.ID)
	assert.Contains(t, post.ID, SourceMedium)
}
