package models

import "time"

type Payment struct {
	ID            int64     `json:"id"`
	InvoiceID     int64     `json:"invoice_id"`
	BookingID     int64     `json:"booking_id,omitempty"`
	TenantID      int64     `json:"tenant_id"`
	Amount        float64   `json:"amount"`
	Channel       string    `json:"channel"` // bank_transfer, digital_wallet, cash
	Status        string    `json:"status"`  // pending, verified, rejected
	BankName      string    `json:"bank_name,omitempty"`
	AccountHolder string    `json:"account_holder,omitempty"`
	TransferDate  time.Time `json:"transfer_date,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	VerifiedAt    time.Time `json:"verified_at,omitempty"`
}

// ManualPaymentSubmission is what the proof-upload form produces: bank-transfer
// metadata plus the base64 payment proof the tenant scanned or photographed.
type ManualPaymentSubmission struct {
	InvoiceID     int64     `json:"invoice_id"`
	Amount        float64   `json:"amount"`
	BankName      string    `json:"bank_name"`
	AccountHolder string    `json:"account_holder"`
	TransferDate  time.Time `json:"transfer_date"`
	Notes         string    `json:"notes,omitempty"`
	ProofFileName string    `json:"proof_file_name"`
	ProofType     string    `json:"proof_type"`
	ProofContent  string    `json:"proof_content"` // base64, raw or data: URL
}
