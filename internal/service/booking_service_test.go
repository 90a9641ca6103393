package service

import (
	"context"
	"testing"
	"time"

	"dormgate/internal/events"
	"dormgate/internal/models"
	"dormgate/internal/upstream"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newBookingService(up *mockBookings, docs *mockDocuments, c *fakeCache, j *fakeJournal) *BookingService {
	logger := zerolog.Nop()
	return NewBookingService(up, docs, c, j, events.NewEventBus(), &logger)
}

func identityApproved(docs *mockDocuments, token string) {
	docs.On("ListDocumentTypes", mock.Anything, token).Return([]models.DocumentType{
		{ID: 1, Name: "Passport", IsIdentity: true},
		{ID: 2, Name: "Student card"},
	}, nil)
	docs.On("ListDocuments", mock.Anything, token).Return([]models.Document{
		{ID: 10, TypeID: 1, Status: models.StatusDocumentApproved},
	}, nil)
}

func TestCreateBooking(t *testing.T) {
	up := new(mockBookings)
	docs := new(mockDocuments)
	c := newFakeCache()
	j := &fakeJournal{}
	svc := newBookingService(up, docs, c, j)
	session := testSession()

	identityApproved(docs, session.Token)

	req := upstream.CreateBookingRequest{
		RoomID:   3,
		CheckIn:  time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2027, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	up.On("CreateBooking", mock.Anything, session.Token, req).
		Return(&models.Booking{ID: 12, RoomID: 3, Status: models.StatusBookingPending}, nil)

	booking, err := svc.CreateBooking(context.Background(), session, req)
	require.NoError(t, err)
	assert.Equal(t, int64(12), booking.ID)
	assert.Contains(t, c.invalid, "bookings")
	require.Len(t, j.entries, 1)
	assert.Equal(t, "requested", j.entries[0].Action)
}

func TestCreateBooking_IdentityGate(t *testing.T) {
	up := new(mockBookings)
	docs := new(mockDocuments)
	svc := newBookingService(up, docs, newFakeCache(), &fakeJournal{})
	session := testSession()

	docs.On("ListDocumentTypes", mock.Anything, session.Token).Return([]models.DocumentType{
		{ID: 1, Name: "Passport", IsIdentity: true},
	}, nil)
	// документ есть, но ещё на проверке
	docs.On("ListDocuments", mock.Anything, session.Token).Return([]models.Document{
		{ID: 10, TypeID: 1, Status: models.StatusDocumentPending},
	}, nil)

	_, err := svc.CreateBooking(context.Background(), session, upstream.CreateBookingRequest{RoomID: 3})
	assert.ErrorIs(t, err, ErrIdentityRequired)
	up.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBooking_ApprovedNonIdentityDoesNotCount(t *testing.T) {
	up := new(mockBookings)
	docs := new(mockDocuments)
	svc := newBookingService(up, docs, newFakeCache(), &fakeJournal{})
	session := testSession()

	docs.On("ListDocumentTypes", mock.Anything, session.Token).Return([]models.DocumentType{
		{ID: 1, Name: "Passport", IsIdentity: true},
		{ID: 2, Name: "Proof of enrollment"},
	}, nil)
	docs.On("ListDocuments", mock.Anything, session.Token).Return([]models.Document{
		{ID: 11, TypeID: 2, Status: models.StatusDocumentApproved},
	}, nil)

	_, err := svc.CreateBooking(context.Background(), session, upstream.CreateBookingRequest{RoomID: 3})
	assert.ErrorIs(t, err, ErrIdentityRequired)
}

func TestListBookings_Cached(t *testing.T) {
	up := new(mockBookings)
	docs := new(mockDocuments)
	svc := newBookingService(up, docs, newFakeCache(), &fakeJournal{})
	session := testSession()

	up.On("ListBookings", mock.Anything, session.Token, 1, 20).
		Return([]models.Booking{{ID: 1, Status: models.StatusBookingApproved}}, nil).Once()

	first, err := svc.ListBookings(context.Background(), session, 1, 20)
	require.NoError(t, err)
	second, err := svc.ListBookings(context.Background(), session, 1, 20)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	up.AssertNumberOfCalls(t, "ListBookings", 1)
}

func TestCancelBooking(t *testing.T) {
	up := new(mockBookings)
	docs := new(mockDocuments)
	c := newFakeCache()
	j := &fakeJournal{}
	svc := newBookingService(up, docs, c, j)
	session := testSession()

	up.On("CancelBooking", mock.Anything, session.Token, int64(12), "moving out").Return(nil)

	require.NoError(t, svc.CancelBooking(context.Background(), session, 12, "moving out"))
	assert.Contains(t, c.invalid, "bookings")
	require.Len(t, j.entries, 1)
	assert.Equal(t, "cancelled", j.entries[0].Action)
}
