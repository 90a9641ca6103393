package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventPaymentSubmitted = "payment_submitted"
	EventPaymentVerified  = "payment_verified"
	EventDocumentUploaded = "document_uploaded"
	EventDocumentReviewed = "document_reviewed"
	EventIssueReported    = "issue_reported"
	EventBookingCreated   = "booking_created"
	EventBookingCanceled  = "booking_canceled"
	EventSessionRevoked   = "session_revoked"
)

// PaymentEventPayload describes the minimal payment snapshot for event consumers.
type PaymentEventPayload struct {
	PaymentID int64   `json:"payment_id,omitempty"`
	InvoiceID int64   `json:"invoice_id"`
	TenantID  int64   `json:"tenant_id"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
	Channel   string  `json:"channel,omitempty"`
}

// DocumentEventPayload describes a document upload or review outcome.
type DocumentEventPayload struct {
	DocumentID int64  `json:"document_id"`
	TenantID   int64  `json:"tenant_id"`
	TypeCode   string `json:"type_code"`
	Status     string `json:"status"`
}

// IssueEventPayload describes a newly reported maintenance issue.
type IssueEventPayload struct {
	IssueID    int64  `json:"issue_id"`
	TenantID   int64  `json:"tenant_id"`
	CategoryID int64  `json:"category_id"`
	Title      string `json:"title"`
	PhotoCount int    `json:"photo_count"`
}

// BookingEventPayload describes a booking request or cancellation.
type BookingEventPayload struct {
	BookingID int64  `json:"booking_id"`
	TenantID  int64  `json:"tenant_id"`
	RoomID    int64  `json:"room_id"`
	Status    string `json:"status"`
}

// SessionEventPayload describes a session lifecycle change.
type SessionEventPayload struct {
	SessionID string `json:"session_id"`
	TenantID  int64  `json:"tenant_id"`
	Reason    string `json:"reason,omitempty"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
	Processed bool
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}

// NewJSONEvent builds an Event with JSON payload for manual publishing.
func NewJSONEvent(eventType string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{Type: eventType, Payload: raw, CreatedAt: time.Now()}, nil
}
