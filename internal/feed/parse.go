package feed

import "fmt"

// rawItem is the per-article field tuple extracted by either parser before
// normalization.
type rawItem struct {
	Title       string
	Link        string
	GUID        string
	Author      string
	Description string
	PubDate     string
	Categories  []string
	Content     string
	Enclosure   string
}

// Diagnostic records a per-item parse problem. A bad item never aborts the
// batch; these get surfaced to operators through the logs instead.
type Diagnostic struct {
	Item    string
	Problem string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Item, d.Problem)
}

// parseDocument routes the raw feed text through the parser configured for
// the source.
func parseDocument(src Source, raw string) ([]rawItem, []Diagnostic, error) {
	switch src.kind {
	case kindGofeed:
		return parseWithGofeed(raw)
	default:
		items, diags := parseRegexRSS(raw)
		return items, diags, nil
	}
}
