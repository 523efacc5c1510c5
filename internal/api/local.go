package api

import (
	"encoding/json"
	"errors"
	"net/http"

	rooerrs "github.com/rookeryhq/rookery/internal/errors"
	"github.com/rookeryhq/rookery/internal/rookery"
	"github.com/rookeryhq/rookery/internal/server"
)

type LocalPostsResp struct {
	Success    bool           `json:"success"`
	Posts      []rookery.Post `json:"posts"`
	TotalPosts int            `json:"totalPosts"`
}

func (s *Server) getLocalPosts(w http.ResponseWriter, r *http.Request) error {
	setNoStore(w)

	if slug := r.URL.Query().Get("slug"); slug != "" {
		post, err := s.store.BySlug(slug)
		if errors.Is(err, rookery.ErrNotFound) {
			return rooerrs.E("post not found", http.StatusNotFound)
		}
		if err != nil {
			return err
		}
		return server.WriteJSON(w, http.StatusOK, post)
	}

	posts, err := s.store.All()
	if err != nil {
		return err
	}

	return server.WriteJSON(w, http.StatusOK, LocalPostsResp{
		Success:    true,
		Posts:      posts,
		TotalPosts: len(posts),
	})
}

type CreatePostReq struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Excerpt  string   `json:"excerpt"`
	Author   string   `json:"author"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Image    string   `json:"image"`
}

func (req CreatePostReq) Validate() error {
	var details []rooerrs.Detail
	if req.Title == "" {
		details = append(details, rooerrs.Detail{Field: "title", Error: "is required"})
	}
	if req.Content == "" {
		details = append(details, rooerrs.Detail{Field: "content", Error: "is required"})
	}
	if len(details) > 0 {
		return rooerrs.E("invalid post", details, http.StatusBadRequest)
	}

	return nil
}

func (s *Server) postLocalPost(w http.ResponseWriter, r *http.Request) error {
	body, err := server.DecodeValid[CreatePostReq](r.Body)
	if err != nil {
		var rooErr *rooerrs.Error
		if errors.As(err, &rooErr) {
			return rooErr
		}
		return rooerrs.E(err, http.StatusBadRequest)
	}

	post, err := s.store.Create(rookery.Post{
		Title:    body.Title,
		Content:  body.Content,
		Excerpt:  body.Excerpt,
		Author:   body.Author,
		Category: body.Category,
		Tags:     body.Tags,
		Image:    body.Image,
	})
	if err != nil {
		return err
	}

	return server.WriteJSON(w, http.StatusCreated, post)
}

type UpdatePostReq struct {
	ID       string   `json:"id"`
	Title    *string  `json:"title"`
	Content  *string  `json:"content"`
	Excerpt  *string  `json:"excerpt"`
	Author   *string  `json:"author"`
	Category *string  `json:"category"`
	Tags     []string `json:"tags"`
	Image    *string  `json:"image"`
}

func (s *Server) putLocalPost(w http.ResponseWriter, r *http.Request) error {
	var body UpdatePostReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return rooerrs.E(err, http.StatusBadRequest)
	}
	if body.ID == "" {
		return rooerrs.E("id is required", http.StatusBadRequest)
	}

	post, err := s.store.Update(body.ID, rookery.UpdatePostArgs{
		Title:    body.Title,
		Content:  body.Content,
		Excerpt:  body.Excerpt,
		Author:   body.Author,
		Category: body.Category,
		Tags:     body.Tags,
		Image:    body.Image,
	})
	if errors.Is(err, rookery.ErrNotFound) {
		return rooerrs.E("post not found", http.StatusNotFound)
	}
	if err != nil {
		return err
	}

	return server.WriteJSON(w, http.StatusOK, post)
}

func (s *Server) deleteLocalPost(w http.ResponseWriter, r *http.Request) error {
	id := r.URL.Query().Get("id")
	if id == "" {
		return rooerrs.E("id is required", http.StatusBadRequest)
	}

	err := s.store.Delete(id)
	if errors.Is(err, rookery.ErrNotFound) {
		return rooerrs.E("post not found", http.StatusNotFound)
	}
	if err != nil {
		return err
	}

	return server.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
