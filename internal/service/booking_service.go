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
	"dormgate/internal/upstream"

	"github.com/rs/zerolog"
)

var ErrIdentityRequired = errors.New("an approved identity document is required before booking")

type BookingService struct {
	upstream  domain.UpstreamBookings
	documents domain.UpstreamDocuments
	cache     domain.ResponseCache
	journal   domain.ActivityJournal
	eventBus  domain.EventPublisher
	logger    *zerolog.Logger
}

func NewBookingService(up domain.UpstreamBookings, documents domain.UpstreamDocuments, respCache domain.ResponseCache, j domain.ActivityJournal, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		upstream:  up,
		documents: documents,
		cache:     respCache,
		journal:   j,
		eventBus:  eventBus,
		logger:    logger,
	}
}

func (s *BookingService) ListBookings(ctx context.Context, session *models.Session, page, perPage int) ([]models.Booking, error) {
	key := cache.Key("bookings", map[string]string{
		"tenant":   strconv.FormatInt(session.Tenant.ID, 10),
		"page":     strconv.Itoa(page),
		"per_page": strconv.Itoa(perPage),
	})

	var cached []models.Booking
	if ok, err := s.cache.Get(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}

	bookings, err := s.upstream.ListBookings(ctx, session.Token, page, perPage)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, bookings); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to cache bookings")
	}
	return bookings, nil
}

func (s *BookingService) GetBooking(ctx context.Context, session *models.Session, id int64) (*models.Booking, error) {
	return s.upstream.GetBooking(ctx, session.Token, id)
}

// CreateBooking requests a room. The backend rejects tenants without an
// approved identity document, so we check first to fail with a clear message
// and without a wasted write.
func (s *BookingService) CreateBooking(ctx context.Context, session *models.Session, req upstream.CreateBookingRequest) (*models.Booking, error) {
	approved, err := hasApprovedIdentity(ctx, s.documents, session.Token)
	if err != nil {
		return nil, err
	}
	if !approved {
		return nil, ErrIdentityRequired
	}

	booking, err := s.upstream.CreateBooking(ctx, session.Token, req)
	if err != nil {
		s.record(ctx, session, 0, "requested", "failed", err.Error())
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, "bookings"); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate bookings cache")
	}

	s.record(ctx, session, booking.ID, "requested", "accepted", "")
	s.publish(booking, session)
	return booking, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, session *models.Session, id int64, reason string) error {
	if err := s.upstream.CancelBooking(ctx, session.Token, id, reason); err != nil {
		s.record(ctx, session, id, "cancelled", "failed", err.Error())
		return err
	}

	if err := s.cache.Invalidate(ctx, "bookings"); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate bookings cache")
	}

	s.record(ctx, session, id, "cancelled", "accepted", "")
	if err := s.eventBus.PublishJSON(events.EventBookingCanceled, events.BookingEventPayload{
		BookingID: id,
		TenantID:  session.Tenant.ID,
		Status:    models.StatusBookingCancelled,
	}); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish booking event")
	}
	return nil
}

// AgreementTemplate fetches the blank housing agreement for preview.
func (s *BookingService) AgreementTemplate(ctx context.Context, session *models.Session) ([]byte, string, error) {
	return s.upstream.FetchAgreementTemplate(ctx, session.Token)
}

func (s *BookingService) record(ctx context.Context, session *models.Session, bookingID int64, action, outcome, detail string) {
	err := s.journal.Record(ctx, journal.Entry{
		TenantID: session.Tenant.ID,
		Entity:   "booking",
		EntityID: bookingID,
		Action:   action,
		Outcome:  outcome,
		Detail:   detail,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to record booking activity")
	}
}

func (s *BookingService) publish(booking *models.Booking, session *models.Session) {
	err := s.eventBus.PublishJSON(events.EventBookingCreated, events.BookingEventPayload{
		BookingID: booking.ID,
		TenantID:  session.Tenant.ID,
		RoomID:    booking.RoomID,
		Status:    booking.Status,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish booking event")
	}
}

func hasApprovedIdentity(ctx context.Context, documents domain.UpstreamDocuments, token string) (bool, error) {
	types, err := documents.ListDocumentTypes(ctx, token)
	if err != nil {
		return false, err
	}
	docs, err := documents.ListDocuments(ctx, token)
	if err != nil {
		return false, err
	}

	identity := make(map[int64]bool)
	for _, dt := range types {
		if dt.IsIdentity {
			identity[dt.ID] = true
		}
	}
	for _, doc := range docs {
		if identity[doc.TypeID] && doc.Status == models.StatusDocumentApproved {
			return true, nil
		}
	}
	return false, nil
}
