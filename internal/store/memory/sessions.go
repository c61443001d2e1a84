package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/taskflow/taskflow-core/internal/core/domain"
)

// SessionStore tracks sessions in process memory. Suitable for development
// and tests; production deployments use the Redis-backed store so sessions
// survive restarts.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	expiry   map[string]time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: map[string]*domain.Session{},
		expiry:   map[string]time.Time{},
	}
}

func (s *SessionStore) Put(ctx context.Context, session *domain.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *session
	s.sessions[session.ID] = &c
	s.expiry[session.ID] = time.Now().UTC().Add(ttl)
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	deadline := s.expiry[id]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, domain.ErrNotFound)
	}
	if time.Now().UTC().After(deadline) {
		_ = s.Delete(ctx, id)
		return nil, fmt.Errorf("session %q: %w", id, domain.ErrNotFound)
	}
	c := *session
	return &c, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("session %q: %w", id, domain.ErrNotFound)
	}
	delete(s.sessions, id)
	delete(s.expiry, id)
	return nil
}
