package session

import (
	"context"
	"sync"
	"time"

	"dormgate/internal/models"
)

type memoryEntry struct {
	session   *models.Session
	expiresAt time.Time
}

// MemoryStore backs sessions when redis is not configured. Sessions vanish on
// restart, which only forces a re-login.
type MemoryStore struct {
	sessions sync.Map
	ttl      time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl}
}

func (s *MemoryStore) Create(ctx context.Context, token string, tenant models.Tenant) (*models.Session, error) {
	sess := newSession(token, tenant)
	s.sessions.Store(sess.ID, &memoryEntry{
		session:   sess,
		expiresAt: time.Now().Add(s.ttl),
	})
	return sess, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Session, error) {
	val, ok := s.sessions.Load(id)
	if !ok {
		return nil, nil
	}
	entry := val.(*memoryEntry)
	if time.Now().After(entry.expiresAt) {
		s.sessions.Delete(id)
		return nil, nil
	}
	return entry.session, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.sessions.Delete(id)
	return nil
}
