package models

import "time"

type IssueCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type IssuePhoto struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Content     string `json:"content,omitempty"` // base64
	URL         string `json:"url,omitempty"`
	IsPrimary   bool   `json:"is_primary"`
}

type Issue struct {
	ID          int64  `json:"id"`
	TenantID    int64  `json:"tenant_id"`
	BookingID   int64  `json:"booking_id,omitempty"`
	CategoryID  int64  `json:"category_id"`
	Category    string `json:"category,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	// Priority is assigned by housing admins; the portal only ever reads it.
	Priority  string       `json:"priority,omitempty"`
	Status    string       `json:"status"` // open, in_progress, resolved, closed
	Photos    []IssuePhoto `json:"photos,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
