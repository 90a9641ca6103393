// Package worker runs the verification watcher: after a tenant submits a
// manual payment or a document, the watcher polls the backend until the
// submission is reviewed, then refreshes the cache and publishes an event so
// the portal shows the new status without waiting for TTL expiry.
package worker

import (
	"context"
	"errors"
	"time"

	"dormgate/internal/domain"
	"dormgate/internal/events"
	"dormgate/internal/models"

	"github.com/rs/zerolog"
)

const (
	KindPayment  = "payment"
	KindDocument = "document"
)

var ErrQueueFull = errors.New("watcher queue is full")

// Task is one submission to watch until the backend reviews it.
type Task struct {
	Kind    string
	ID      int64
	Session *models.Session
	Attempt int
}

type Watcher struct {
	payments  domain.UpstreamPayments
	documents domain.UpstreamDocuments
	cache     domain.ResponseCache
	eventBus  domain.EventPublisher
	retry     RetryPolicy
	queue     chan Task
	logger    zerolog.Logger
}

func NewWatcher(payments domain.UpstreamPayments, documents domain.UpstreamDocuments, respCache domain.ResponseCache, eventBus domain.EventPublisher, retry RetryPolicy, logger *zerolog.Logger) *Watcher {
	retry = retry.withDefaults()

	var log zerolog.Logger
	if logger != nil {
		log = logger.With().Str("component", "watcher").Logger()
	}

	return &Watcher{
		payments:  payments,
		documents: documents,
		cache:     respCache,
		eventBus:  eventBus,
		retry:     retry,
		queue:     make(chan Task, models.WatcherQueueSize),
		logger:    log,
	}
}

func (w *Watcher) EnqueuePayment(ctx context.Context, session *models.Session, paymentID int64) error {
	return w.enqueue(ctx, Task{Kind: KindPayment, ID: paymentID, Session: session})
}

func (w *Watcher) EnqueueDocument(ctx context.Context, session *models.Session, documentID int64) error {
	return w.enqueue(ctx, Task{Kind: KindDocument, ID: documentID, Session: session})
}

func (w *Watcher) enqueue(ctx context.Context, task Task) error {
	select {
	case w.queue <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

// Start launches the main loop; stops when ctx is done.
func (w *Watcher) Start(ctx context.Context) {
	w.logger.Info().Msg("verification watcher started")
	defer w.logger.Info().Msg("verification watcher stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case task := <-w.queue:
			w.process(ctx, task)
		}
	}
}

func (w *Watcher) process(ctx context.Context, task Task) {
	task.Attempt++

	done, err := w.check(ctx, task)
	if err != nil {
		w.logger.Warn().Err(err).Str("kind", task.Kind).Int64("id", task.ID).Msg("status check failed")
	}
	if done {
		return
	}

	if task.Attempt >= w.retry.MaxAttempts {
		w.logger.Warn().Str("kind", task.Kind).Int64("id", task.ID).Int("attempts", task.Attempt).
			Msg("giving up on verification watch")
		return
	}

	w.requeue(ctx, task)
}

// requeue puts the task back after a backoff delay without blocking the loop.
func (w *Watcher) requeue(ctx context.Context, task Task) {
	delay := w.retry.NextDelay(task.Attempt)
	time.AfterFunc(delay, func() {
		select {
		case w.queue <- task:
		case <-ctx.Done():
		default:
			w.logger.Warn().Str("kind", task.Kind).Int64("id", task.ID).Msg("queue full, watch dropped")
		}
	})
}

func (w *Watcher) check(ctx context.Context, task Task) (bool, error) {
	switch task.Kind {
	case KindPayment:
		return w.checkPayment(ctx, task)
	case KindDocument:
		return w.checkDocument(ctx, task)
	default:
		return true, errors.New("unknown watch kind: " + task.Kind)
	}
}

func (w *Watcher) checkPayment(ctx context.Context, task Task) (bool, error) {
	payment, err := w.payments.GetPayment(ctx, task.Session.Token, task.ID)
	if err != nil {
		return false, err
	}
	if payment.Status == models.StatusPaymentPending {
		return false, nil
	}

	for _, prefix := range []string{"payments", "invoices"} {
		if err := w.cache.Invalidate(ctx, prefix); err != nil {
			w.logger.Warn().Err(err).Str("prefix", prefix).Msg("failed to invalidate cache")
		}
	}

	if err := w.eventBus.PublishJSON(events.EventPaymentVerified, events.PaymentEventPayload{
		PaymentID: payment.ID,
		InvoiceID: payment.InvoiceID,
		TenantID:  task.Session.Tenant.ID,
		Amount:    payment.Amount,
		Status:    payment.Status,
		Channel:   payment.Channel,
	}); err != nil {
		w.logger.Warn().Err(err).Msg("failed to publish payment event")
	}

	w.logger.Info().Int64("payment_id", payment.ID).Str("status", payment.Status).Msg("payment reviewed")
	return true, nil
}

func (w *Watcher) checkDocument(ctx context.Context, task Task) (bool, error) {
	doc, err := w.documents.GetDocument(ctx, task.Session.Token, task.ID)
	if err != nil {
		return false, err
	}
	if doc.Status == models.StatusDocumentPending {
		return false, nil
	}

	if err := w.cache.Invalidate(ctx, "documents"); err != nil {
		w.logger.Warn().Err(err).Msg("failed to invalidate documents cache")
	}

	if err := w.eventBus.PublishJSON(events.EventDocumentReviewed, events.DocumentEventPayload{
		DocumentID: doc.ID,
		TenantID:   task.Session.Tenant.ID,
		TypeCode:   doc.TypeName,
		Status:     doc.Status,
	}); err != nil {
		w.logger.Warn().Err(err).Msg("failed to publish document event")
	}

	w.logger.Info().Int64("document_id", doc.ID).Str("status", doc.Status).Msg("document reviewed")
	return true, nil
}
