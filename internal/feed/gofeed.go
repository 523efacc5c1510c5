package feed

import (
	"fmt"

	"github.com/mmcdole/gofeed"
)

// parseWithGofeed maps a library-parsed feed into the same raw tuple the
// regex parser produces, so normalization doesn't care where a post came
// from.
//
// A parse error here is a document-level failure (the whole feed was
// unreadable), which is distinct from the per-item diagnostics.
func parseWithGofeed(raw string) ([]rawItem, []Diagnostic, error) {
	parsed, err := gofeed.NewParser().ParseString(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("error parsing feed: %w", err)
	}

	var (
		items []rawItem
		diags []Diagnostic
	)
	for i, item := range parsed.Items {
		if item == nil {
			continue
		}

		ri := rawItem{
			Title:       item.Title,
			Link:        item.Link,
			GUID:        item.GUID,
			Description: stripTags(item.Description),
			PubDate:     item.Published,
			Categories:  item.Categories,
			Content:     item.Content,
		}
		if len(item.Enclosures) > 0 {
			ri.Enclosure = item.Enclosures[0].URL
		}
		if ri.Enclosure == "" && item.Image != nil {
			ri.Enclosure = item.Image.URL
		}
		// gofeed surfaces dc:creator; used in place of the source default.
		if item.Author != nil {
			ri.Author = item.Author.Name
		}

		if ri.Title == "" && ri.Link == "" {
			diags = append(diags, Diagnostic{
				Item:    itemLabel(i, ri),
				Problem: "no title or link in feed item",
			})
		}

		items = append(items, ri)
	}

	return items, diags, nil
}
