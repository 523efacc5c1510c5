package api

import (
	"net/http"
	"strconv"

	rooerrs "github.com/rookeryhq/rookery/internal/errors"
	"github.com/rookeryhq/rookery/internal/publish"
	"github.com/rookeryhq/rookery/internal/rookery"
	"github.com/rookeryhq/rookery/internal/server"
)

type PublishReq struct {
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	Excerpt        string   `json:"excerpt"`
	Tags           []string `json:"tags"`
	Category       string   `json:"category"`
	Platforms      []string `json:"platforms"`
	SEOTitle       string   `json:"seoTitle"`
	SEODescription string   `json:"seoDescription"`
	SEOKeywords    []string `json:"seoKeywords"`
}

func (req PublishReq) Validate() error {
	var details []rooerrs.Detail
	if req.Title == "" {
		details = append(details, rooerrs.Detail{Field: "title", Error: "is required"})
	}
	if req.Content == "" {
		details = append(details, rooerrs.Detail{Field: "content", Error: "is required"})
	}
	if len(req.Platforms) == 0 {
		details = append(details, rooerrs.Detail{Field: "platforms", Error: "at least one is required"})
	}
	if len(details) > 0 {
		return rooerrs.E("invalid publish request", details, http.StatusBadRequest)
	}

	return nil
}

type PublishResp struct {
	Results []publish.Result `json:"results"`
}

func (s *Server) postPublish(w http.ResponseWriter, r *http.Request) error {
	body, err := server.DecodeValid[PublishReq](r.Body)
	if err != nil {
		return rooerrs.E(err, http.StatusBadRequest)
	}

	results := s.publisher.Publish(r.Context(), publish.Article{
		Title:          body.Title,
		Content:        body.Content,
		Excerpt:        body.Excerpt,
		Tags:           body.Tags,
		Category:       body.Category,
		SEOTitle:       body.SEOTitle,
		SEODescription: body.SEODescription,
		SEOKeywords:    body.SEOKeywords,
	}, body.Platforms)

	return server.WriteJSON(w, http.StatusOK, PublishResp{Results: results})
}

type PublishHistoryResp struct {
	Records []rookery.PublishRecord `json:"records"`
}

func (s *Server) getPublishHistory(w http.ResponseWriter, r *http.Request) error {
	args := rookery.RecordsArgs{
		Platform: r.URL.Query().Get("platform"),
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		args.Limit = uint64(limit)
	}

	records, err := s.publog.Records(r.Context(), args)
	if err != nil {
		return err
	}

	return server.WriteJSON(w, http.StatusOK, PublishHistoryResp{Records: records})
}
