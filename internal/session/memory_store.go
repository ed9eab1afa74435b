package session

import (
	"context"
	"sync"
	"time"

	apperrors "wedding-guest-list/pkg/app_errors"

	"github.com/google/uuid"
)

type memorySession struct {
	username  string
	expiresAt time.Time
	flashes   []Flash
}

// MemoryStore keeps sessions in process. Used when redis is disabled.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*memorySession
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*memorySession),
	}
}

func (s *MemoryStore) Create(ctx context.Context, username string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	token := uuid.New().String()
	expiresAt := now.Add(s.ttl).UTC()
	s.sessions[token] = &memorySession{username: username, expiresAt: expiresAt}

	return &Session{Token: token, Username: username, ExpiresAt: expiresAt}, nil
}

func (s *MemoryStore) Get(ctx context.Context, token string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.lookup(token)
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	return &Session{Token: token, Username: sess.username, ExpiresAt: sess.expiresAt}, nil
}

func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

func (s *MemoryStore) AddFlash(ctx context.Context, token string, flash Flash) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.lookup(token)
	if !ok {
		return apperrors.ErrSessionNotFound
	}
	sess.flashes = append(sess.flashes, flash)
	return nil
}

func (s *MemoryStore) PopFlashes(ctx context.Context, token string) ([]Flash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.lookup(token)
	if !ok {
		return []Flash{}, nil
	}
	flashes := sess.flashes
	sess.flashes = nil
	if flashes == nil {
		flashes = []Flash{}
	}
	return flashes, nil
}

// lookup drops the session if it has expired. Caller holds mu.
func (s *MemoryStore) lookup(token string) (*memorySession, bool) {
	sess, ok := s.sessions[token]
	if !ok {
		return nil, false
	}
	if !s.now().Before(sess.expiresAt) {
		delete(s.sessions, token)
		return nil, false
	}
	return sess, true
}

func (s *MemoryStore) sweep(now time.Time) {
	for token, sess := range s.sessions {
		if !now.Before(sess.expiresAt) {
			delete(s.sessions, token)
		}
	}
}
