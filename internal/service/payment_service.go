package service

import (
	"context"
	"errors"
	"strconv"

	"dormgate/internal/cache"
	"dormgate/internal/domain"
	"dormgate/internal/events"
	"dormgate/internal/journal"
	"dormgate/internal/models"
	"dormgate/internal/upload"

	"github.com/rs/zerolog"
)

var (
	ErrBankDetailsRequired  = errors.New("bank name, account holder and transfer date are required")
	ErrProofRequired        = errors.New("payment proof image is required")
	ErrPendingPaymentExists = errors.New("a payment for this invoice is already awaiting verification")
)

type PaymentService struct {
	upstream  domain.UpstreamPayments
	cache     domain.ResponseCache
	journal   domain.ActivityJournal
	eventBus  domain.EventPublisher
	watcher   domain.VerificationWorker
	validator *upload.Validator
	logger    *zerolog.Logger
}

func NewPaymentService(up domain.UpstreamPayments, respCache domain.ResponseCache, j domain.ActivityJournal, eventBus domain.EventPublisher, watcher domain.VerificationWorker, validator *upload.Validator, logger *zerolog.Logger) *PaymentService {
	return &PaymentService{
		upstream:  up,
		cache:     respCache,
		journal:   j,
		eventBus:  eventBus,
		watcher:   watcher,
		validator: validator,
		logger:    logger,
	}
}

func (s *PaymentService) ListInvoices(ctx context.Context, session *models.Session) ([]models.Invoice, error) {
	key := cache.Key("invoices", map[string]string{
		"tenant": strconv.FormatInt(session.Tenant.ID, 10),
	})

	var cached []models.Invoice
	if ok, err := s.cache.Get(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}

	invoices, err := s.upstream.ListInvoices(ctx, session.Token)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, invoices); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to cache invoices")
	}
	return invoices, nil
}

func (s *PaymentService) GetInvoice(ctx context.Context, session *models.Session, id int64) (*models.Invoice, error) {
	return s.upstream.GetInvoice(ctx, session.Token, id)
}

func (s *PaymentService) ListPayments(ctx context.Context, session *models.Session) ([]models.Payment, error) {
	key := cache.Key("payments", map[string]string{
		"tenant": strconv.FormatInt(session.Tenant.ID, 10),
	})

	var cached []models.Payment
	if ok, err := s.cache.Get(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}

	payments, err := s.upstream.ListPayments(ctx, session.Token)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, payments); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to cache payments")
	}
	return payments, nil
}

func (s *PaymentService) GetPayment(ctx context.Context, session *models.Session, id int64) (*models.Payment, error) {
	return s.upstream.GetPayment(ctx, session.Token, id)
}

// PendingManualPayments lists bank-transfer payments still awaiting
// verification for the invoice. Always fetched fresh, never cached: the form
// uses it to decide whether a new submission is allowed.
func (s *PaymentService) PendingManualPayments(ctx context.Context, session *models.Session, invoiceID int64) ([]models.Payment, error) {
	return s.upstream.ListPendingManualPayments(ctx, session.Token, invoiceID)
}

// SubmitManualPayment checks the bank details, validates the proof file,
// refuses when the invoice already has a pending manual payment, and only
// then posts to the backend.
func (s *PaymentService) SubmitManualPayment(ctx context.Context, session *models.Session, sub models.ManualPaymentSubmission) (*models.Payment, error) {
	if sub.BankName == "" || sub.AccountHolder == "" || sub.TransferDate.IsZero() {
		return nil, ErrBankDetailsRequired
	}
	if sub.ProofContent == "" {
		return nil, ErrProofRequired
	}

	raw, err := upload.DecodeBase64(sub.ProofContent)
	if err != nil {
		return nil, err
	}

	att, err := s.validator.Validate(sub.ProofFileName, raw)
	if err != nil {
		return nil, err
	}
	sub.ProofType = att.ContentType

	pending, err := s.upstream.ListPendingManualPayments(ctx, session.Token, sub.InvoiceID)
	if err != nil {
		return nil, err
	}
	if len(pending) > 0 {
		return nil, ErrPendingPaymentExists
	}

	payment, err := s.upstream.SubmitManualPayment(ctx, session.Token, sub)
	if err != nil {
		s.record(ctx, session, 0, sub.InvoiceID, "failed", err.Error())
		return nil, err
	}

	for _, prefix := range []string{"payments", "invoices"} {
		if err := s.cache.Invalidate(ctx, prefix); err != nil {
			s.logger.Warn().Err(err).Str("prefix", prefix).Msg("failed to invalidate cache")
		}
	}

	s.record(ctx, session, payment.ID, sub.InvoiceID, "accepted", "")
	if err := s.eventBus.PublishJSON(events.EventPaymentSubmitted, events.PaymentEventPayload{
		PaymentID: payment.ID,
		InvoiceID: sub.InvoiceID,
		TenantID:  session.Tenant.ID,
		Amount:    sub.Amount,
		Status:    payment.Status,
		Channel:   models.ChannelBankTransfer,
	}); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish payment event")
	}

	if s.watcher != nil {
		if err := s.watcher.EnqueuePayment(ctx, session, payment.ID); err != nil {
			s.logger.Warn().Err(err).Int64("payment_id", payment.ID).Msg("failed to enqueue payment watch")
		}
	}
	return payment, nil
}

func (s *PaymentService) record(ctx context.Context, session *models.Session, paymentID, invoiceID int64, outcome, detail string) {
	if detail == "" {
		detail = "invoice " + strconv.FormatInt(invoiceID, 10)
	}
	err := s.journal.Record(ctx, journal.Entry{
		TenantID: session.Tenant.ID,
		Entity:   "payment",
		EntityID: paymentID,
		Action:   "submitted",
		Outcome:  outcome,
		Detail:   detail,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to record payment activity")
	}
}
