package service

import (
	"context"
	"encoding/json"
	"sync"

	"dormgate/internal/journal"
	"dormgate/internal/models"
	"dormgate/internal/upstream"

	"github.com/stretchr/testify/mock"
)

type mockPayments struct {
	mock.Mock
}

func (m *mockPayments) ListInvoices(ctx context.Context, token string) ([]models.Invoice, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Invoice), args.Error(1)
}
func (m *mockPayments) GetInvoice(ctx context.Context, token string, id int64) (*models.Invoice, error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}
func (m *mockPayments) ListPayments(ctx context.Context, token string) ([]models.Payment, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Payment), args.Error(1)
}
func (m *mockPayments) GetPayment(ctx context.Context, token string, id int64) (*models.Payment, error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}
func (m *mockPayments) ListPendingManualPayments(ctx context.Context, token string, invoiceID int64) ([]models.Payment, error) {
	args := m.Called(ctx, token, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Payment), args.Error(1)
}
func (m *mockPayments) SubmitManualPayment(ctx context.Context, token string, sub models.ManualPaymentSubmission) (*models.Payment, error) {
	args := m.Called(ctx, token, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

type mockDocuments struct {
	mock.Mock
}

func (m *mockDocuments) ListDocumentTypes(ctx context.Context, token string) ([]models.DocumentType, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DocumentType), args.Error(1)
}
func (m *mockDocuments) ListDocuments(ctx context.Context, token string) ([]models.Document, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Document), args.Error(1)
}
func (m *mockDocuments) GetDocument(ctx context.Context, token string, id int64) (*models.Document, error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}
func (m *mockDocuments) UploadDocument(ctx context.Context, token string, req upstream.UploadDocumentRequest) (*models.Document, error) {
	args := m.Called(ctx, token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}
func (m *mockDocuments) FetchDocumentFile(ctx context.Context, token string, id int64) ([]byte, string, error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

type mockBookings struct {
	mock.Mock
}

func (m *mockBookings) ListBookings(ctx context.Context, token string, page, perPage int) ([]models.Booking, error) {
	args := m.Called(ctx, token, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}
func (m *mockBookings) GetBooking(ctx context.Context, token string, id int64) (*models.Booking, error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockBookings) CreateBooking(ctx context.Context, token string, req upstream.CreateBookingRequest) (*models.Booking, error) {
	args := m.Called(ctx, token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockBookings) CancelBooking(ctx context.Context, token string, id int64, reason string) error {
	return m.Called(ctx, token, id, reason).Error(0)
}
func (m *mockBookings) FetchAgreementTemplate(ctx context.Context, token string) ([]byte, string, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

type mockIssues struct {
	mock.Mock
}

func (m *mockIssues) ListIssueCategories(ctx context.Context, token string) ([]models.IssueCategory, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.IssueCategory), args.Error(1)
}
func (m *mockIssues) ListIssues(ctx context.Context, token string) ([]models.Issue, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Issue), args.Error(1)
}
func (m *mockIssues) CreateIssue(ctx context.Context, token string, req upstream.CreateIssueRequest) (*models.Issue, error) {
	args := m.Called(ctx, token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Issue), args.Error(1)
}

type mockAuth struct {
	mock.Mock
}

func (m *mockAuth) Login(ctx context.Context, email, password string) (*upstream.LoginResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*upstream.LoginResult), args.Error(1)
}
func (m *mockAuth) VerifyToken(ctx context.Context, token string) (*models.Tenant, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

type mockSessions struct {
	mock.Mock
}

func (m *mockSessions) Create(ctx context.Context, token string, tenant models.Tenant) (*models.Session, error) {
	args := m.Called(ctx, token, tenant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}
func (m *mockSessions) Get(ctx context.Context, id string) (*models.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}
func (m *mockSessions) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockWatcher struct {
	mock.Mock
}

func (m *mockWatcher) EnqueuePayment(ctx context.Context, session *models.Session, paymentID int64) error {
	return m.Called(ctx, session, paymentID).Error(0)
}
func (m *mockWatcher) EnqueueDocument(ctx context.Context, session *models.Session, documentID int64) error {
	return m.Called(ctx, session, documentID).Error(0)
}

// fakeCache is a minimal in-memory ResponseCache for service tests.
type fakeCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	invalid []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalid = append(c.invalid, prefix)
	for key := range c.data {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.data, key)
		}
	}
	return nil
}

// fakeJournal collects entries in memory.
type fakeJournal struct {
	mu      sync.Mutex
	entries []journal.Entry
}

func (j *fakeJournal) Record(_ context.Context, entry journal.Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
	return nil
}

func (j *fakeJournal) ListByTenant(_ context.Context, tenantID int64, _ int) ([]journal.Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []journal.Entry
	for _, e := range j.entries {
		if e.TenantID == tenantID {
			out = append(out, e)
		}
	}
	return out, nil
}

func testSession() *models.Session {
	return &models.Session{
		ID:    "sess-1",
		Token: "backend-token",
		Tenant: models.Tenant{
			ID:       42,
			FullName: "Anna Petrova",
			Email:    "anna@example.com",
		},
	}
}
