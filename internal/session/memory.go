package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type refreshEntry struct {
	userID    uuid.UUID
	expiresAt time.Time
}

// MemoryStore is the session store used when no redis address is configured.
type MemoryStore struct {
	mu      sync.Mutex
	refresh map[string]refreshEntry
	current map[uuid.UUID]uuid.UUID
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		refresh: map[string]refreshEntry{},
		current: map[uuid.UUID]uuid.UUID{},
		now:     time.Now,
	}
}

func (s *MemoryStore) SaveRefreshToken(_ context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh[tokenHash] = refreshEntry{userID: userID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) ConsumeRefreshToken(_ context.Context, tokenHash string) (uuid.UUID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.refresh[tokenHash]
	if !ok {
		return uuid.Nil, false, nil
	}
	delete(s.refresh, tokenHash)
	if !s.now().Before(entry.expiresAt) {
		return uuid.Nil, false, nil
	}
	return entry.userID, true, nil
}

func (s *MemoryStore) RevokeRefreshToken(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refresh, tokenHash)
	return nil
}

func (s *MemoryStore) SetCurrentList(_ context.Context, userID, listID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current[userID] = listID
	return nil
}

func (s *MemoryStore) CurrentList(_ context.Context, userID uuid.UUID) (uuid.UUID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	listID, ok := s.current[userID]
	return listID, ok, nil
}

func (s *MemoryStore) ClearCurrentList(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.current, userID)
	return nil
}
