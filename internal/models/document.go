package models

import "time"

type DocumentType struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	IsIdentity bool   `json:"is_identity"`
	Required   bool   `json:"required"`
}

type Document struct {
	ID          int64     `json:"id"`
	TenantID    int64     `json:"tenant_id"`
	TypeID      int64     `json:"type_id"`
	TypeName    string    `json:"type_name,omitempty"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Status      string    `json:"status"` // pending, approved, rejected
	Content     string    `json:"content,omitempty"` // base64, set only on detail fetches
	FileURL     string    `json:"file_url,omitempty"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	ReviewedAt  time.Time `json:"reviewed_at,omitempty"`
}
