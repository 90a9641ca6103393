package service

import (
	"context"
	"testing"

	"dormgate/internal/events"
	"dormgate/internal/models"
	"dormgate/internal/upstream"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAuthService(up *mockAuth, sessions *mockSessions) *AuthService {
	logger := zerolog.Nop()
	return NewAuthService(up, sessions, events.NewEventBus(), &logger)
}

func TestLogin(t *testing.T) {
	up := new(mockAuth)
	sessions := new(mockSessions)
	svc := newAuthService(up, sessions)

	tenant := models.Tenant{ID: 42, Email: "anna@example.com"}
	up.On("Login", mock.Anything, "anna@example.com", "secret").
		Return(&upstream.LoginResult{Token: "backend-token", Tenant: tenant}, nil)
	sessions.On("Create", mock.Anything, "backend-token", tenant).
		Return(&models.Session{ID: "sess-1", Token: "backend-token", Tenant: tenant}, nil)

	session, err := svc.Login(context.Background(), "anna@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", session.ID)
	assert.Equal(t, int64(42), session.Tenant.ID)
}

func TestLogin_BadCredentials(t *testing.T) {
	up := new(mockAuth)
	sessions := new(mockSessions)
	svc := newAuthService(up, sessions)

	apiErr := &upstream.APIError{Status: 401, Message: "invalid credentials"}
	up.On("Login", mock.Anything, "anna@example.com", "wrong").Return(nil, apiErr)

	_, err := svc.Login(context.Background(), "anna@example.com", "wrong")
	assert.ErrorIs(t, err, apiErr)
	sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogout(t *testing.T) {
	up := new(mockAuth)
	sessions := new(mockSessions)
	svc := newAuthService(up, sessions)

	bus := events.NewEventBus()
	var revoked int
	bus.Subscribe(events.EventSessionRevoked, func(_ *events.Event) error { revoked++; return nil })
	logger := zerolog.Nop()
	svc = NewAuthService(up, sessions, bus, &logger)

	sessions.On("Delete", mock.Anything, "sess-1").Return(nil)

	err := svc.Logout(context.Background(), testSession())
	require.NoError(t, err)
	assert.Equal(t, 1, revoked)
}

func TestVerify(t *testing.T) {
	up := new(mockAuth)
	sessions := new(mockSessions)
	svc := newAuthService(up, sessions)
	session := testSession()

	up.On("VerifyToken", mock.Anything, session.Token).
		Return(&models.Tenant{ID: 42, FullName: "Anna Petrova"}, nil)

	tenant, err := svc.Verify(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, "Anna Petrova", tenant.FullName)
}
