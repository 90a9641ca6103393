package models

import "time"

type Tenant struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	RoomID    int64     `json:"room_id,omitempty"`
	RoomName  string    `json:"room_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the gateway-side replacement for the browser's stored
// token/tenant_user keys. The upstream bearer token never leaves the gateway.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	Tenant    Tenant    `json:"tenant"`
	CreatedAt time.Time `json:"created_at"`
}
