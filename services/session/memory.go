package session

import (
	"context"
	"sync"

	"luxstay/models"
)

// MemoryStore keeps the session in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	session models.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(_ context.Context) (models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session, nil
}

func (m *MemoryStore) Save(_ context.Context, s models.Session) error {
	if err := checkSave(s); err != nil {
		return err
	}
	m.mu.Lock()
	m.session = s
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	m.session = models.Session{}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Rotate(_ context.Context, refreshToken string, next models.TokenPair) (models.Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := rotated(m.session, refreshToken, next)
	m.session = s
	return s, ok, nil
}
