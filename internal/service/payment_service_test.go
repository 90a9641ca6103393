package service

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"dormgate/internal/events"
	"dormgate/internal/models"
	"dormgate/internal/upload"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var pngProof = base64.StdEncoding.EncodeToString([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00})

// manualSub returns a complete submission; tests blank out fields they target.
func manualSub() models.ManualPaymentSubmission {
	return models.ManualPaymentSubmission{
		InvoiceID:     7,
		Amount:        450,
		BankName:      "BCA",
		AccountHolder: "Anna Petrova",
		TransferDate:  time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		ProofFileName: "proof.png",
		ProofContent:  pngProof,
	}
}

func newPaymentService(up *mockPayments, c *fakeCache, j *fakeJournal, w *mockWatcher) *PaymentService {
	logger := zerolog.Nop()
	validator := upload.NewValidator(models.MaxUploadBytes, []string{"image/png", "image/jpeg", "image/gif"})
	return NewPaymentService(up, c, j, events.NewEventBus(), w, validator, &logger)
}

func TestSubmitManualPayment(t *testing.T) {
	up := new(mockPayments)
	c := newFakeCache()
	j := &fakeJournal{}
	w := new(mockWatcher)
	svc := newPaymentService(up, c, j, w)
	session := testSession()

	sub := manualSub()

	up.On("ListPendingManualPayments", mock.Anything, session.Token, int64(7)).Return([]models.Payment{}, nil)
	up.On("SubmitManualPayment", mock.Anything, session.Token, mock.MatchedBy(func(s models.ManualPaymentSubmission) bool {
		return s.InvoiceID == 7 && s.ProofType == "image/png"
	})).Return(&models.Payment{ID: 100, InvoiceID: 7, Status: models.StatusPaymentPending}, nil)
	w.On("EnqueuePayment", mock.Anything, session, int64(100)).Return(nil)

	payment, err := svc.SubmitManualPayment(context.Background(), session, sub)
	require.NoError(t, err)
	assert.Equal(t, int64(100), payment.ID)

	// кэш платежей и счетов должен сброситься
	assert.Contains(t, c.invalid, "payments")
	assert.Contains(t, c.invalid, "invoices")

	require.Len(t, j.entries, 1)
	assert.Equal(t, "accepted", j.entries[0].Outcome)
	up.AssertExpectations(t)
	w.AssertExpectations(t)
}

func TestSubmitManualPayment_PendingBlocks(t *testing.T) {
	up := new(mockPayments)
	svc := newPaymentService(up, newFakeCache(), &fakeJournal{}, new(mockWatcher))
	session := testSession()

	up.On("ListPendingManualPayments", mock.Anything, session.Token, int64(7)).
		Return([]models.Payment{{ID: 55, Status: models.StatusPaymentPending}}, nil)

	_, err := svc.SubmitManualPayment(context.Background(), session, manualSub())
	assert.ErrorIs(t, err, ErrPendingPaymentExists)

	// POST не должен выполняться
	up.AssertNotCalled(t, "SubmitManualPayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitManualPayment_BankDetailsRequired(t *testing.T) {
	cases := map[string]func(*models.ManualPaymentSubmission){
		"no bank name":      func(s *models.ManualPaymentSubmission) { s.BankName = "" },
		"no account holder": func(s *models.ManualPaymentSubmission) { s.AccountHolder = "" },
		"no transfer date":  func(s *models.ManualPaymentSubmission) { s.TransferDate = time.Time{} },
	}

	for name, blank := range cases {
		t.Run(name, func(t *testing.T) {
			up := new(mockPayments)
			svc := newPaymentService(up, newFakeCache(), &fakeJournal{}, new(mockWatcher))

			sub := manualSub()
			blank(&sub)

			_, err := svc.SubmitManualPayment(context.Background(), testSession(), sub)
			assert.ErrorIs(t, err, ErrBankDetailsRequired)

			// никаких обращений к бэкенду до валидации формы
			up.AssertNotCalled(t, "ListPendingManualPayments", mock.Anything, mock.Anything, mock.Anything)
			up.AssertNotCalled(t, "SubmitManualPayment", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSubmitManualPayment_ProofRequired(t *testing.T) {
	up := new(mockPayments)
	svc := newPaymentService(up, newFakeCache(), &fakeJournal{}, new(mockWatcher))

	sub := manualSub()
	sub.ProofFileName = ""
	sub.ProofContent = ""

	_, err := svc.SubmitManualPayment(context.Background(), testSession(), sub)
	assert.ErrorIs(t, err, ErrProofRequired)
	up.AssertNotCalled(t, "ListPendingManualPayments", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitManualPayment_BadProofType(t *testing.T) {
	up := new(mockPayments)
	svc := newPaymentService(up, newFakeCache(), &fakeJournal{}, new(mockWatcher))

	sub := manualSub()
	sub.ProofFileName = "proof.txt"
	sub.ProofContent = base64.StdEncoding.EncodeToString([]byte("just text"))

	_, err := svc.SubmitManualPayment(context.Background(), testSession(), sub)
	assert.ErrorIs(t, err, upload.ErrUnsupportedType)
}

func TestSubmitManualPayment_PendingCheckFails(t *testing.T) {
	up := new(mockPayments)
	svc := newPaymentService(up, newFakeCache(), &fakeJournal{}, new(mockWatcher))
	session := testSession()

	upstreamErr := errors.New("backend down")
	up.On("ListPendingManualPayments", mock.Anything, session.Token, int64(7)).Return(nil, upstreamErr)

	_, err := svc.SubmitManualPayment(context.Background(), session, manualSub())
	assert.ErrorIs(t, err, upstreamErr)
	up.AssertNotCalled(t, "SubmitManualPayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestListInvoices_Cached(t *testing.T) {
	up := new(mockPayments)
	svc := newPaymentService(up, newFakeCache(), &fakeJournal{}, new(mockWatcher))
	session := testSession()

	up.On("ListInvoices", mock.Anything, session.Token).
		Return([]models.Invoice{{ID: 1, Status: models.StatusInvoiceUnpaid}}, nil).Once()

	first, err := svc.ListInvoices(context.Background(), session)
	require.NoError(t, err)
	second, err := svc.ListInvoices(context.Background(), session)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	up.AssertNumberOfCalls(t, "ListInvoices", 1)
}

func TestPendingManualPayments_NeverCached(t *testing.T) {
	up := new(mockPayments)
	svc := newPaymentService(up, newFakeCache(), &fakeJournal{}, new(mockWatcher))
	session := testSession()

	up.On("ListPendingManualPayments", mock.Anything, session.Token, int64(9)).
		Return([]models.Payment{}, nil).Twice()

	_, err := svc.PendingManualPayments(context.Background(), session, 9)
	require.NoError(t, err)
	_, err = svc.PendingManualPayments(context.Background(), session, 9)
	require.NoError(t, err)

	up.AssertNumberOfCalls(t, "ListPendingManualPayments", 2)
}
