package api

import (
	"fmt"
	"net/http"
	"net/url"

	readability "github.com/go-shiori/go-readability"
	"github.com/sym01/htmlsanitizer"

	rooerrs "github.com/rookeryhq/rookery/internal/errors"
	"github.com/rookeryhq/rookery/internal/server"
)

// ReaderResp is a cleaned-up article body for the site's reader view.
type ReaderResp struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (s *Server) getReader(w http.ResponseWriter, r *http.Request) error {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		return rooerrs.E("url is required", http.StatusBadRequest)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return rooerrs.E("url must be absolute http(s)", http.StatusBadRequest)
	}

	// Cache results for less processing and to prevent refetches
	if resp, ok := s.readerCache.Get(raw); ok {
		return server.WriteJSON(w, http.StatusOK, resp)
	}

	// Fetch the actual page
	resp, err := s.fetchClient.Get(raw)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code fetching article: %d", resp.StatusCode)
	}

	// Strip it for readability and sanitize
	parser := readability.NewParser()
	article, err := parser.Parse(resp.Body, u)
	if err != nil {
		return err
	}

	sanitizer := htmlsanitizer.NewHTMLSanitizer()
	contents, err := sanitizer.SanitizeString(article.Content)
	if err != nil {
		return err
	}

	ret := ReaderResp{
		Title:   article.Title,
		Content: contents,
	}
	// Add to the cache for next time
	s.readerCache.Add(raw, ret)

	return server.WriteJSON(w, http.StatusOK, ret)
}
