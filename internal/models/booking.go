package models

import "time"

type Booking struct {
	ID            int64     `json:"id"`
	TenantID      int64     `json:"tenant_id"`
	RoomID        int64     `json:"room_id"`
	RoomName      string    `json:"room_name,omitempty"`
	CheckIn       time.Time `json:"check_in"`
	CheckOut      time.Time `json:"check_out"`
	Status        string    `json:"status"` // pending, approved, rejected, cancelled, checked_in, completed
	PaymentStatus string    `json:"payment_status"`
	TotalAmount   float64   `json:"total_amount"`
	InvoiceID     int64     `json:"invoice_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Active reports whether the booking still occupies a room or awaits a decision.
func (b *Booking) Active() bool {
	switch b.Status {
	case StatusBookingPending, StatusBookingApproved, StatusBookingCheckedIn:
		return true
	}
	return false
}
