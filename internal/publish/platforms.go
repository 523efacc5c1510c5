package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Endpoints are vars so tests can point them at a local server.
var (
	devtoURL    = "https://dev.to/api/articles"
	mediumURL   = "https://api.medium.com/v1"
	hashnodeURL = "https://gql.hashnode.com"
)

func (p *Publisher) publishDevto(ctx context.Context, article Article) (string, error) {
	if p.cfg.DevtoAPIKey == "" {
		return "", fmt.Errorf("dev.to credentials not configured")
	}

	body := map[string]any{
		"article": map[string]any{
			"title":         article.Title,
			"body_markdown": article.Content,
			"description":   article.Excerpt,
			"tags":          article.Tags,
			"published":     true,
		},
	}
	var resp struct {
		URL string `json:"url"`
	}
	err := p.postJSON(ctx, devtoURL, map[string]string{"api-key": p.cfg.DevtoAPIKey}, body, &resp)
	if err != nil {
		return "", fmt.Errorf("dev.to publish failed: %w", err)
	}

	return resp.URL, nil
}

func (p *Publisher) publishMedium(ctx context.Context, article Article) (string, error) {
	if p.cfg.MediumToken == "" {
		return "", fmt.Errorf("medium credentials not configured")
	}

	auth := map[string]string{"Authorization": "Bearer " + p.cfg.MediumToken}

	// Medium wants the author id first.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediumURL+"/me", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", auth["Authorization"])
	meResp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("medium me lookup failed: %w", err)
	}
	defer meResp.Body.Close()
	if meResp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("medium me lookup failed: status %d", meResp.StatusCode)
	}
	var me struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := decodeJSON(meResp.Body, &me); err != nil {
		return "", fmt.Errorf("medium me lookup failed: %w", err)
	}

	body := map[string]any{
		"title":         article.Title,
		"contentFormat": "markdown",
		"content":       article.Content,
		"tags":          article.Tags,
		"publishStatus": "public",
	}
	var resp struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	err = p.postJSON(ctx, fmt.Sprintf("%s/users/%s/posts", mediumURL, me.Data.ID), auth, body, &resp)
	if err != nil {
		return "", fmt.Errorf("medium publish failed: %w", err)
	}

	return resp.Data.URL, nil
}

func (p *Publisher) publishHashnode(ctx context.Context, article Article) (string, error) {
	if p.cfg.HashnodeToken == "" {
		return "", fmt.Errorf("hashnode credentials not configured")
	}

	const mutation = `mutation PublishPost($input: PublishPostInput!) {
		publishPost(input: $input) { post { url } }
	}`
	body := map[string]any{
		"query": mutation,
		"variables": map[string]any{
			"input": map[string]any{
				"title":           article.Title,
				"contentMarkdown": article.Content,
				"tags":            hashnodeTags(article.Tags),
			},
		},
	}
	var resp struct {
		Data struct {
			PublishPost struct {
				Post struct {
					URL string `json:"url"`
				} `json:"post"`
			} `json:"publishPost"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	err := p.postJSON(ctx, hashnodeURL, map[string]string{"Authorization": p.cfg.HashnodeToken}, body, &resp)
	if err != nil {
		return "", fmt.Errorf("hashnode publish failed: %w", err)
	}
	if len(resp.Errors) > 0 {
		return "", fmt.Errorf("hashnode publish failed: %s", resp.Errors[0].Message)
	}

	return resp.Data.PublishPost.Post.URL, nil
}

func decodeJSON(r io.Reader, out any) error {
	return json.NewDecoder(r).Decode(out)
}

func hashnodeTags(tags []string) []map[string]string {
	out := make([]map[string]string, 0, len(tags))
	for _, tag := range tags {
		out = append(out, map[string]string{
			"slug": strings.ToLower(strings.ReplaceAll(tag, " ", "-")),
			"name": tag,
		})
	}
	return out
}
