package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	rooerrs "github.com/rookeryhq/rookery/internal/errors"
	"github.com/rookeryhq/rookery/internal/rookery"
	"github.com/rookeryhq/rookery/internal/server"
)

// BlogResp is the envelope every aggregation response uses. The frontend
// always gets well-formed JSON with a success flag, never a bare error page.
type BlogResp struct {
	Success     bool           `json:"success"`
	Posts       []rookery.Post `json:"posts"`
	TotalPosts  int            `json:"totalPosts"`
	LastUpdated string         `json:"lastUpdated,omitempty"`
	Cached      bool           `json:"cached"`
	Warning     string         `json:"warning,omitempty"`
}

type BlogErrResp struct {
	Success bool           `json:"success"`
	Error   string         `json:"error"`
	Posts   []rookery.Post `json:"posts"`
}

// Downstream caches must not hold these responses: freshness is the
// aggregator's TTL, not HTTP caching.
func setNoStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
}

func (s *Server) getBlogPosts(w http.ResponseWriter, r *http.Request) error {
	var (
		ctx    = r.Context()
		source = mux.Vars(r)["source"]
	)
	setNoStore(w)

	res, err := s.agg.Posts(ctx, source)
	if errors.Is(err, rookery.ErrNotFound) {
		return rooerrs.E(err, http.StatusNotFound)
	}
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, rookery.ErrRateLimited) {
			status = http.StatusTooManyRequests
		}
		return server.WriteJSON(w, status, BlogErrResp{
			Success: false,
			Error:   err.Error(),
			Posts:   []rookery.Post{},
		})
	}

	return server.WriteJSON(w, http.StatusOK, BlogResp{
		Success:     true,
		Posts:       res.Posts,
		TotalPosts:  len(res.Posts),
		LastUpdated: res.FetchedAt.UTC().Format(time.RFC3339),
		Cached:      res.Cached,
		Warning:     res.Warning,
	})
}
