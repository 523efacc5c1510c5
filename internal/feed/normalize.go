package feed

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/rookeryhq/rookery/internal/rookery"
)

var (
	reNonSlug     = regexp.MustCompile(`[^a-z0-9\s-]`)
	reWhitespace  = regexp.MustCompile(`\s+`)
	reMultiHyphen = regexp.MustCompile(`-{2,}`)
	reImgTag      = regexp.MustCompile(`(?is)<img[^>]+src=["']([^"']+)["']`)
)

// Slugify derives the URL-safe identifier from a title. Pure and
// deterministic: the same title always yields the same slug.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = reNonSlug.ReplaceAllString(s, "")
	s = reWhitespace.ReplaceAllString(s, "-")
	s = reMultiHyphen.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Excerpt truncates a description to 200 characters, marking the cut with
// an ellipsis.
func Excerpt(s string) string {
	runes := []rune(s)
	if len(runes) <= 200 {
		return s
	}
	return string(runes[:200]) + "..."
}

// ReadTime estimates reading time at 200 words per minute.
//
// An empty description comes out as "0 min read". That matches what the
// site has always shown and the frontend relies on the exact string, so it
// stays until the copy gets reworked.
func ReadTime(s string) string {
	words := len(strings.Fields(s))
	mins := int(math.Ceil(float64(words) / 200))
	return fmt.Sprintf("%d min read", mins)
}

// inlineImages returns every inline <img src> URL in the content, in order.
// Data-URIs are dropped.
func inlineImages(content string) []string {
	var urls []string
	for _, m := range reImgTag.FindAllStringSubmatch(content, -1) {
		u := strings.TrimSpace(m[1])
		if u == "" || strings.HasPrefix(u, "data:") {
			continue
		}
		urls = append(urls, u)
	}
	return urls
}

// pickImage selects the cover image: enclosure first, then the first inline
// image, then the source's placeholder.
func pickImage(enclosure string, inline []string, placeholder string) string {
	if enclosure != "" && !strings.HasPrefix(enclosure, "data:") {
		return enclosure
	}
	if len(inline) > 0 {
		return inline[0]
	}
	return placeholder
}

// Layouts seen across the platforms' pubDate fields.
var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"Mon, 02 Jan 2006 15:04:05 MST",
}

// normalizeDate turns an upstream date string into YYYY-MM-DD. When nothing
// parses, the raw literal is kept as-is and ok is false so the caller can
// record a diagnostic.
func normalizeDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format("2006-01-02"), true
		}
	}
	return raw, false
}

// externalLinks templates the slug into each known platform's URL pattern.
// These are cross-posting stubs and are not verified to resolve.
func externalLinks(slug string, templates map[string]string) map[string]string {
	if len(templates) == 0 || slug == "" {
		return nil
	}
	links := make(map[string]string, len(templates))
	for platform, tpl := range templates {
		links[platform] = fmt.Sprintf(tpl, slug)
	}
	return links
}

// normalize builds the final Post from one raw item. Pure except for the
// clock, which only matters for items without a guid or link.
func normalize(src Source, item rawItem, now time.Time) (rookery.Post, []Diagnostic) {
	var diags []Diagnostic

	id := item.GUID
	if id == "" {
		id = item.Link
	}
	if id == "" {
		// No stable external identifier; this id won't survive a restart.
		id = fmt.Sprintf("%s-%d", src.Name, now.UnixNano())
	}

	slug := Slugify(item.Title)

	desc := item.Description
	if desc == "" {
		desc = stripTags(item.Content)
	}

	date, ok := normalizeDate(item.PubDate)
	if !ok && item.PubDate != "" {
		diags = append(diags, Diagnostic{
			Item:    itemLabel(0, item),
			Problem: fmt.Sprintf("unparsable pubDate %q kept verbatim", item.PubDate),
		})
	}

	author := item.Author
	if author == "" {
		author = src.DefaultAuthor
	}

	category := src.DefaultCategory
	if len(item.Categories) > 0 && item.Categories[0] != "" {
		category = item.Categories[0]
	}

	tags := append([]string{}, item.Categories...)
	tags = append(tags, src.ExtraTags...)

	inline := inlineImages(item.Content)

	return rookery.Post{
		ID:            id,
		Slug:          slug,
		Title:         item.Title,
		Excerpt:       Excerpt(desc),
		Content:       item.Content,
		Author:        author,
		Date:          date,
		Category:      category,
		Tags:          tags,
		ReadTime:      ReadTime(desc),
		Image:         pickImage(item.Enclosure, inline, src.PlaceholderImage),
		Images:        inline,
		Source:        src.Name,
		ExternalLinks: externalLinks(slug, src.LinkTemplates),
	}, diags
}
