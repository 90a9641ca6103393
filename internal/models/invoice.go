package models

import "time"

type Invoice struct {
	ID        int64     `json:"id"`
	Number    string    `json:"number"`
	BookingID int64     `json:"booking_id"`
	Amount    float64   `json:"amount"`
	DueDate   time.Time `json:"due_date"`
	Status    string    `json:"status"` // unpaid, partially_paid, paid
	CreatedAt time.Time `json:"created_at"`
}

func (i *Invoice) Outstanding() bool {
	return i.Status == StatusInvoiceUnpaid || i.Status == StatusInvoicePartiallyPaid
}
