package upstream

import (
	"time"

	"dormgate/internal/models"
)

// The backend's JSON is an inconsistent mix of snake_case and legacy camelCase
// field names (booking_id vs bookingId and so on). Wire types below accept
// both spellings on decode; canonical models are the only shape that ever
// leaves this package, and the portal never emits duplicate legacy fields.

func pickInt(a, b int64) int64 {
	if a != 0 {
		return a
	}
	return b
}

func pickStr(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func pickFloat(a, b float64) float64 {
	if a != 0 {
		return a
	}
	return b
}

func pickTime(a, b time.Time) time.Time {
	if !a.IsZero() {
		return a
	}
	return b
}

type bookingWire struct {
	ID            int64     `json:"id"`
	TenantID      int64     `json:"tenant_id"`
	TenantIDAlt   int64     `json:"tenantId"`
	RoomID        int64     `json:"room_id"`
	RoomIDAlt     int64     `json:"roomId"`
	RoomName      string    `json:"room_name"`
	RoomNameAlt   string    `json:"roomName"`
	CheckIn       time.Time `json:"check_in"`
	CheckInAlt    time.Time `json:"checkIn"`
	CheckOut      time.Time `json:"check_out"`
	CheckOutAlt   time.Time `json:"checkOut"`
	Status        string    `json:"status"`
	PayStatus     string    `json:"payment_status"`
	PayStatusAlt  string    `json:"paymentStatus"`
	TotalAmount   float64   `json:"total_amount"`
	TotalAmtAlt   float64   `json:"totalAmount"`
	InvoiceID     int64     `json:"invoice_id"`
	InvoiceIDAlt  int64     `json:"invoiceId"`
	CreatedAt     time.Time `json:"created_at"`
	CreatedAtAlt  time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updated_at"`
	UpdatedAtAlt  time.Time `json:"updatedAt"`
}

func (w bookingWire) toModel() models.Booking {
	return models.Booking{
		ID:            w.ID,
		TenantID:      pickInt(w.TenantID, w.TenantIDAlt),
		RoomID:        pickInt(w.RoomID, w.RoomIDAlt),
		RoomName:      pickStr(w.RoomName, w.RoomNameAlt),
		CheckIn:       pickTime(w.CheckIn, w.CheckInAlt),
		CheckOut:      pickTime(w.CheckOut, w.CheckOutAlt),
		Status:        w.Status,
		PaymentStatus: pickStr(w.PayStatus, w.PayStatusAlt),
		TotalAmount:   pickFloat(w.TotalAmount, w.TotalAmtAlt),
		InvoiceID:     pickInt(w.InvoiceID, w.InvoiceIDAlt),
		CreatedAt:     pickTime(w.CreatedAt, w.CreatedAtAlt),
		UpdatedAt:     pickTime(w.UpdatedAt, w.UpdatedAtAlt),
	}
}

type invoiceWire struct {
	ID           int64     `json:"id"`
	Number       string    `json:"number"`
	NumberAlt    string    `json:"invoice_number"`
	BookingID    int64     `json:"booking_id"`
	BookingIDAlt int64     `json:"bookingId"`
	Amount       float64   `json:"amount"`
	DueDate      time.Time `json:"due_date"`
	DueDateAlt   time.Time `json:"dueDate"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	CreatedAtAlt time.Time `json:"createdAt"`
}

func (w invoiceWire) toModel() models.Invoice {
	return models.Invoice{
		ID:        w.ID,
		Number:    pickStr(w.Number, w.NumberAlt),
		BookingID: pickInt(w.BookingID, w.BookingIDAlt),
		Amount:    w.Amount,
		DueDate:   pickTime(w.DueDate, w.DueDateAlt),
		Status:    w.Status,
		CreatedAt: pickTime(w.CreatedAt, w.CreatedAtAlt),
	}
}

type paymentWire struct {
	ID               int64     `json:"id"`
	InvoiceID        int64     `json:"invoice_id"`
	InvoiceIDAlt     int64     `json:"invoiceId"`
	BookingID        int64     `json:"booking_id"`
	BookingIDAlt     int64     `json:"bookingId"`
	TenantID         int64     `json:"tenant_id"`
	TenantIDAlt      int64     `json:"tenantId"`
	Amount           float64   `json:"amount"`
	Channel          string    `json:"channel"`
	ChannelAlt       string    `json:"payment_channel"`
	Status           string    `json:"status"`
	BankName         string    `json:"bank_name"`
	BankNameAlt      string    `json:"bankName"`
	AccountHolder    string    `json:"account_holder"`
	AccountHolderAlt string    `json:"accountHolder"`
	TransferDate     time.Time `json:"transfer_date"`
	TransferDateAlt  time.Time `json:"transferDate"`
	Notes            string    `json:"notes"`
	CreatedAt        time.Time `json:"created_at"`
	CreatedAtAlt     time.Time `json:"createdAt"`
	VerifiedAt       time.Time `json:"verified_at"`
	VerifiedAtAlt    time.Time `json:"verifiedAt"`
}

func (w paymentWire) toModel() models.Payment {
	return models.Payment{
		ID:            w.ID,
		InvoiceID:     pickInt(w.InvoiceID, w.InvoiceIDAlt),
		BookingID:     pickInt(w.BookingID, w.BookingIDAlt),
		TenantID:      pickInt(w.TenantID, w.TenantIDAlt),
		Amount:        w.Amount,
		Channel:       pickStr(w.Channel, w.ChannelAlt),
		Status:        w.Status,
		BankName:      pickStr(w.BankName, w.BankNameAlt),
		AccountHolder: pickStr(w.AccountHolder, w.AccountHolderAlt),
		TransferDate:  pickTime(w.TransferDate, w.TransferDateAlt),
		Notes:         w.Notes,
		CreatedAt:     pickTime(w.CreatedAt, w.CreatedAtAlt),
		VerifiedAt:    pickTime(w.VerifiedAt, w.VerifiedAtAlt),
	}
}

type documentTypeWire struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	IsIdentity    bool   `json:"is_identity"`
	IsIdentityAlt bool   `json:"isIdentity"`
	Required      bool   `json:"required"`
	RequiredAlt   bool   `json:"is_required"`
}

func (w documentTypeWire) toModel() models.DocumentType {
	return models.DocumentType{
		ID:         w.ID,
		Name:       w.Name,
		IsIdentity: w.IsIdentity || w.IsIdentityAlt,
		Required:   w.Required || w.RequiredAlt,
	}
}

type documentWire struct {
	ID             int64     `json:"id"`
	TenantID       int64     `json:"tenant_id"`
	TenantIDAlt    int64     `json:"tenantId"`
	TypeID         int64     `json:"type_id"`
	TypeIDAlt      int64     `json:"document_type_id"`
	TypeName       string    `json:"type_name"`
	TypeNameAlt    string    `json:"documentType"`
	FileName       string    `json:"file_name"`
	FileNameAlt    string    `json:"fileName"`
	ContentType    string    `json:"content_type"`
	ContentTypeAlt string    `json:"mime_type"`
	Status         string    `json:"status"`
	Content        string    `json:"content"`
	ContentAlt     string    `json:"file_content"`
	FileURL        string    `json:"file_url"`
	FileURLAlt     string    `json:"fileUrl"`
	Note           string    `json:"note"`
	CreatedAt      time.Time `json:"created_at"`
	CreatedAtAlt   time.Time `json:"createdAt"`
	ReviewedAt     time.Time `json:"reviewed_at"`
	ReviewedAtAlt  time.Time `json:"reviewedAt"`
}

func (w documentWire) toModel() models.Document {
	return models.Document{
		ID:          w.ID,
		TenantID:    pickInt(w.TenantID, w.TenantIDAlt),
		TypeID:      pickInt(w.TypeID, w.TypeIDAlt),
		TypeName:    pickStr(w.TypeName, w.TypeNameAlt),
		FileName:    pickStr(w.FileName, w.FileNameAlt),
		ContentType: pickStr(w.ContentType, w.ContentTypeAlt),
		Status:      w.Status,
		Content:     pickStr(w.Content, w.ContentAlt),
		FileURL:     pickStr(w.FileURL, w.FileURLAlt),
		Note:        w.Note,
		CreatedAt:   pickTime(w.CreatedAt, w.CreatedAtAlt),
		ReviewedAt:  pickTime(w.ReviewedAt, w.ReviewedAtAlt),
	}
}

type issueWire struct {
	ID            int64              `json:"id"`
	TenantID      int64              `json:"tenant_id"`
	TenantIDAlt   int64              `json:"tenantId"`
	BookingID     int64              `json:"booking_id"`
	BookingIDAlt  int64              `json:"bookingId"`
	CategoryID    int64              `json:"category_id"`
	CategoryIDAlt int64              `json:"categoryId"`
	Category      string             `json:"category"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Priority      string             `json:"priority"`
	Status        string             `json:"status"`
	Photos        []models.IssuePhoto `json:"photos"`
	CreatedAt     time.Time          `json:"created_at"`
	CreatedAtAlt  time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updated_at"`
	UpdatedAtAlt  time.Time          `json:"updatedAt"`
}

func (w issueWire) toModel() models.Issue {
	return models.Issue{
		ID:          w.ID,
		TenantID:    pickInt(w.TenantID, w.TenantIDAlt),
		BookingID:   pickInt(w.BookingID, w.BookingIDAlt),
		CategoryID:  pickInt(w.CategoryID, w.CategoryIDAlt),
		Category:    w.Category,
		Title:       w.Title,
		Description: w.Description,
		Priority:    w.Priority,
		Status:      w.Status,
		Photos:      w.Photos,
		CreatedAt:   pickTime(w.CreatedAt, w.CreatedAtAlt),
		UpdatedAt:   pickTime(w.UpdatedAt, w.UpdatedAtAlt),
	}
}

type tenantWire struct {
	ID          int64     `json:"id"`
	FullName    string    `json:"full_name"`
	FullNameAlt string    `json:"fullName"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	RoomID      int64     `json:"room_id"`
	RoomIDAlt   int64     `json:"roomId"`
	RoomName    string    `json:"room_name"`
	RoomNameAlt string    `json:"roomName"`
	CreatedAt   time.Time `json:"created_at"`
}

func (w tenantWire) toModel() models.Tenant {
	return models.Tenant{
		ID:        w.ID,
		FullName:  pickStr(w.FullName, w.FullNameAlt),
		Email:     w.Email,
		Phone:     w.Phone,
		RoomID:    pickInt(w.RoomID, w.RoomIDAlt),
		RoomName:  pickStr(w.RoomName, w.RoomNameAlt),
		CreatedAt: w.CreatedAt,
	}
}
