package upstream

import (
	"context"
	"fmt"
	"net/http"

	"dormgate/internal/models"
)

func (c *Client) ListDocumentTypes(ctx context.Context, token string) ([]models.DocumentType, error) {
	var resp struct {
		Types []documentTypeWire `json:"document_types"`
		Data  []documentTypeWire `json:"data"`
	}
	if err := c.call(ctx, http.MethodGet, "/tenant/document-types", token, nil, &resp, callOpts{resource: "documents"}); err != nil {
		return nil, err
	}

	wires := resp.Types
	if wires == nil {
		wires = resp.Data
	}
	out := make([]models.DocumentType, 0, len(wires))
	for _, w := range wires {
		out = append(out, w.toModel())
	}
	return out, nil
}

func (c *Client) ListDocuments(ctx context.Context, token string) ([]models.Document, error) {
	var resp struct {
		Documents []documentWire `json:"documents"`
		Data      []documentWire `json:"data"`
	}
	if err := c.call(ctx, http.MethodGet, "/tenant/documents", token, nil, &resp, callOpts{resource: "documents"}); err != nil {
		return nil, err
	}

	wires := resp.Documents
	if wires == nil {
		wires = resp.Data
	}
	out := make([]models.Document, 0, len(wires))
	for _, w := range wires {
		out = append(out, w.toModel())
	}
	return out, nil
}

func (c *Client) GetDocument(ctx context.Context, token string, id int64) (*models.Document, error) {
	var resp struct {
		Document documentWire `json:"document"`
	}
	path := fmt.Sprintf("/tenant/documents/%d", id)
	if err := c.call(ctx, http.MethodGet, path, token, nil, &resp, callOpts{resource: "documents"}); err != nil {
		return nil, err
	}
	doc := resp.Document.toModel()
	return &doc, nil
}

type UploadDocumentRequest struct {
	TypeID      int64
	FileName    string
	ContentType string
	Content     string // base64
}

func (c *Client) UploadDocument(ctx context.Context, token string, req UploadDocumentRequest) (*models.Document, error) {
	body := map[string]any{
		"type_id":      req.TypeID,
		"file_name":    req.FileName,
		"content_type": req.ContentType,
		"content":      req.Content,
	}

	var resp struct {
		Document documentWire `json:"document"`
	}
	err := c.call(ctx, http.MethodPost, "/tenant/documents", token, body, &resp, callOpts{
		resource: "documents",
		timeout:  c.uploadTimeout,
	})
	if err != nil {
		return nil, err
	}
	doc := resp.Document.toModel()
	return &doc, nil
}

// FetchDocumentFile downloads the stored file for a document that has no
// embedded base64 content.
func (c *Client) FetchDocumentFile(ctx context.Context, token string, id int64) ([]byte, string, error) {
	path := fmt.Sprintf("/tenant/documents/%d/file", id)
	return c.download(ctx, path, token, "documents")
}
