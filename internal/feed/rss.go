package feed

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// The regex parser is a deliberately tolerant, non-validating extraction
// limited to the tags the substack feed actually uses. Malformed XML that
// doesn't match a tag regex silently yields an empty field rather than
// failing the whole parse.
var (
	reItem      = regexp.MustCompile(`(?is)<item[^>]*>(.*?)</item>`)
	reTitle     = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	reLink      = regexp.MustCompile(`(?is)<link[^>]*>(.*?)</link>`)
	reGUID      = regexp.MustCompile(`(?is)<guid[^>]*>(.*?)</guid>`)
	reCreator   = regexp.MustCompile(`(?is)<dc:creator[^>]*>(.*?)</dc:creator>`)
	reDesc      = regexp.MustCompile(`(?is)<description[^>]*>(.*?)</description>`)
	rePubDate   = regexp.MustCompile(`(?is)<pubDate[^>]*>(.*?)</pubDate>`)
	reCategory  = regexp.MustCompile(`(?is)<category[^>]*>(.*?)</category>`)
	reContent   = regexp.MustCompile(`(?is)<content:encoded[^>]*>(.*?)</content:encoded>`)
	reEnclosure = regexp.MustCompile(`(?i)<enclosure[^>]+url=["']([^"']+)["']`)
	reCDATA     = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
)

// parseRegexRSS extracts items from raw RSS text, best effort.
func parseRegexRSS(raw string) ([]rawItem, []Diagnostic) {
	var (
		items []rawItem
		diags []Diagnostic
	)

	for i, block := range reItem.FindAllStringSubmatch(raw, -1) {
		body := block[1]

		item := rawItem{
			Title:       cleanText(firstMatch(reTitle, body)),
			Link:        cleanText(firstMatch(reLink, body)),
			GUID:        cleanText(firstMatch(reGUID, body)),
			Author:      cleanText(firstMatch(reCreator, body)),
			Description: cleanText(firstMatch(reDesc, body)),
			PubDate:     strings.TrimSpace(firstMatch(rePubDate, body)),
			Content:     decodeEntities(unwrapCDATA(firstMatch(reContent, body))),
			Enclosure:   firstMatch(reEnclosure, body),
		}
		for _, cat := range reCategory.FindAllStringSubmatch(body, -1) {
			item.Categories = append(item.Categories, cleanText(cat[1]))
		}

		if item.Title == "" && item.Link == "" {
			diags = append(diags, Diagnostic{
				Item:    itemLabel(i, item),
				Problem: "no title or link extracted",
			})
		}

		items = append(items, item)
	}

	return items, diags
}

func itemLabel(i int, item rawItem) string {
	if item.Title != "" {
		return item.Title
	}
	return fmt.Sprintf("item %d", i+1)
}

func firstMatch(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// unwrapCDATA removes CDATA wrappers, keeping the wrapped text.
func unwrapCDATA(s string) string {
	return strings.TrimSpace(reCDATA.ReplaceAllString(s, "$1"))
}

// decodeEntities decodes the five standard HTML entities, single pass.
// &#34; comes along too since the sanitizer re-escapes quotes that way.
var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#34;", `"`,
	"&#39;", "'",
)

func decodeEntities(s string) string {
	return entityReplacer.Replace(s)
}

var stripPolicy = bluemonday.StrictPolicy()

// stripTags removes all html from the string, then decodes entities.
//
// Used for titles and descriptions but never for content bodies, which keep
// their markup for the frontend to render.
func stripTags(s string) string {
	return decodeEntities(stripPolicy.Sanitize(s))
}

// cleanText is the standard treatment for short text fields: CDATA unwrap,
// tag strip, entity decode, trim.
func cleanText(s string) string {
	return strings.TrimSpace(stripTags(unwrapCDATA(s)))
}
