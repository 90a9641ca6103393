package upstream

import (
	"context"
	"net/http"

	"dormgate/internal/models"
)

func (c *Client) ListIssueCategories(ctx context.Context, token string) ([]models.IssueCategory, error) {
	var resp struct {
		Categories []models.IssueCategory `json:"categories"`
		Data       []models.IssueCategory `json:"data"`
	}
	if err := c.call(ctx, http.MethodGet, "/tenant/issue-categories", token, nil, &resp, callOpts{resource: "issues"}); err != nil {
		return nil, err
	}
	if resp.Categories != nil {
		return resp.Categories, nil
	}
	return resp.Data, nil
}

func (c *Client) ListIssues(ctx context.Context, token string) ([]models.Issue, error) {
	var resp struct {
		Issues []issueWire `json:"issues"`
		Data   []issueWire `json:"data"`
	}
	if err := c.call(ctx, http.MethodGet, "/tenant/issues", token, nil, &resp, callOpts{resource: "issues"}); err != nil {
		return nil, err
	}

	wires := resp.Issues
	if wires == nil {
		wires = resp.Data
	}
	out := make([]models.Issue, 0, len(wires))
	for _, w := range wires {
		out = append(out, w.toModel())
	}
	return out, nil
}

type CreateIssueRequest struct {
	BookingID   int64
	CategoryID  int64
	Title       string
	Description string
	Photos      []models.IssuePhoto
}

// CreateIssue reports a maintenance issue. Priority is never part of the
// request body: it is assigned by housing admins on their side.
func (c *Client) CreateIssue(ctx context.Context, token string, req CreateIssueRequest) (*models.Issue, error) {
	body := map[string]any{
		"category_id": req.CategoryID,
		"title":       req.Title,
		"description": req.Description,
	}
	if req.BookingID != 0 {
		body["booking_id"] = req.BookingID
	}
	if len(req.Photos) > 0 {
		photos := make([]map[string]any, 0, len(req.Photos))
		for _, p := range req.Photos {
			photos = append(photos, map[string]any{
				"file_name":    p.FileName,
				"content_type": p.ContentType,
				"content":      p.Content,
				"is_primary":   p.IsPrimary,
			})
		}
		body["photos"] = photos
	}

	var resp struct {
		Issue issueWire `json:"issue"`
	}
	err := c.call(ctx, http.MethodPost, "/tenant/issues", token, body, &resp, callOpts{
		resource: "issues",
		timeout:  c.uploadTimeout,
	})
	if err != nil {
		return nil, err
	}
	issue := resp.Issue.toModel()
	return &issue, nil
}
