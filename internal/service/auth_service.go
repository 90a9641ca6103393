package service

import (
	"context"

	"dormgate/internal/domain"
	"dormgate/internal/events"
	"dormgate/internal/models"

	"github.com/rs/zerolog"
)

type AuthService struct {
	upstream domain.UpstreamAuth
	sessions domain.SessionStore
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewAuthService(upstream domain.UpstreamAuth, sessions domain.SessionStore, eventBus domain.EventPublisher, logger *zerolog.Logger) *AuthService {
	return &AuthService{
		upstream: upstream,
		sessions: sessions,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Login exchanges credentials for a backend token and opens a portal session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	result, err := s.upstream.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.Create(ctx, result.Token, result.Tenant)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("tenant_id", result.Tenant.ID).Str("session_id", session.ID).Msg("tenant logged in")
	return session, nil
}

// Logout closes the session. Deleting an unknown session is not an error.
func (s *AuthService) Logout(ctx context.Context, session *models.Session) error {
	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		return err
	}

	if err := s.eventBus.PublishJSON(events.EventSessionRevoked, events.SessionEventPayload{
		SessionID: session.ID,
		TenantID:  session.Tenant.ID,
		Reason:    "logout",
	}); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish session event")
	}
	return nil
}

// Verify re-checks the backend token behind the session and returns the
// current tenant profile.
func (s *AuthService) Verify(ctx context.Context, session *models.Session) (*models.Tenant, error) {
	return s.upstream.VerifyToken(ctx, session.Token)
}
