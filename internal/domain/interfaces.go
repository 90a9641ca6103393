package domain

import (
	"context"

	"dormgate/internal/journal"
	"dormgate/internal/models"
	"dormgate/internal/upstream"
)

// UpstreamAuth covers the backend auth endpoints.
type UpstreamAuth interface {
	Login(ctx context.Context, email, password string) (*upstream.LoginResult, error)
	VerifyToken(ctx context.Context, token string) (*models.Tenant, error)
}

// UpstreamBookings covers booking reads and writes against the backend.
type UpstreamBookings interface {
	ListBookings(ctx context.Context, token string, page, perPage int) ([]models.Booking, error)
	GetBooking(ctx context.Context, token string, id int64) (*models.Booking, error)
	CreateBooking(ctx context.Context, token string, req upstream.CreateBookingRequest) (*models.Booking, error)
	CancelBooking(ctx context.Context, token string, id int64, reason string) error
	FetchAgreementTemplate(ctx context.Context, token string) ([]byte, string, error)
}

// UpstreamPayments covers invoices and the manual payment flow.
type UpstreamPayments interface {
	ListInvoices(ctx context.Context, token string) ([]models.Invoice, error)
	GetInvoice(ctx context.Context, token string, id int64) (*models.Invoice, error)
	ListPayments(ctx context.Context, token string) ([]models.Payment, error)
	GetPayment(ctx context.Context, token string, id int64) (*models.Payment, error)
	ListPendingManualPayments(ctx context.Context, token string, invoiceID int64) ([]models.Payment, error)
	SubmitManualPayment(ctx context.Context, token string, sub models.ManualPaymentSubmission) (*models.Payment, error)
}

// UpstreamDocuments covers tenant document types, uploads and downloads.
type UpstreamDocuments interface {
	ListDocumentTypes(ctx context.Context, token string) ([]models.DocumentType, error)
	ListDocuments(ctx context.Context, token string) ([]models.Document, error)
	GetDocument(ctx context.Context, token string, id int64) (*models.Document, error)
	UploadDocument(ctx context.Context, token string, req upstream.UploadDocumentRequest) (*models.Document, error)
	FetchDocumentFile(ctx context.Context, token string, id int64) ([]byte, string, error)
}

// UpstreamIssues covers maintenance issue reads and writes.
type UpstreamIssues interface {
	ListIssueCategories(ctx context.Context, token string) ([]models.IssueCategory, error)
	ListIssues(ctx context.Context, token string) ([]models.Issue, error)
	CreateIssue(ctx context.Context, token string, req upstream.CreateIssueRequest) (*models.Issue, error)
}

// ResponseCache caches normalized backend responses.
type ResponseCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Invalidate(ctx context.Context, prefix string) error
}

// SessionStore holds portal sessions keyed by session ID.
type SessionStore interface {
	Create(ctx context.Context, token string, tenant models.Tenant) (*models.Session, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

// ActivityJournal records portal write actions locally.
type ActivityJournal interface {
	Record(ctx context.Context, entry journal.Entry) error
	ListByTenant(ctx context.Context, tenantID int64, limit int) ([]journal.Entry, error)
}

// EventPublisher fans out domain events to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// VerificationWorker polls the backend until a submitted entity is reviewed.
type VerificationWorker interface {
	EnqueuePayment(ctx context.Context, session *models.Session, paymentID int64) error
	EnqueueDocument(ctx context.Context, session *models.Session, documentID int64) error
}
