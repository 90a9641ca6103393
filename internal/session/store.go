// Package session keeps tenant sessions on the gateway. Each session binds a
// portal-issued ID to the upstream bearer token and a tenant snapshot, the
// role the browser's localStorage keys played in the old client.
package session

import (
	"context"
	"time"

	"dormgate/internal/models"

	"github.com/google/uuid"
)

type Store interface {
	Create(ctx context.Context, token string, tenant models.Tenant) (*models.Session, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	// Delete removes the session. Deleting an absent session is not an error,
	// so a 401-triggered purge stays idempotent.
	Delete(ctx context.Context, id string) error
}

func newSession(token string, tenant models.Tenant) *models.Session {
	return &models.Session{
		ID:        uuid.NewString(),
		Token:     token,
		Tenant:    tenant,
		CreatedAt: time.Now().UTC(),
	}
}
