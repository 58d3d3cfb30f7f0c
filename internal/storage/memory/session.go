package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ryabkov/filegallery/internal/models"
	"github.com/ryabkov/filegallery/internal/storage"
)

// SessionRepository keeps sessions in a map, mirroring the postgres
// semantics closely enough for service-level tests.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions: make(map[string]models.Session),
	}
}

func (m *SessionRepository) CreateSession(_ context.Context, session models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[session.ID] = session
	return nil
}

func (m *SessionRepository) GetSession(_ context.Context, id string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, storage.ErrSessionNotFound
	}
	return &session, nil
}

func (m *SessionRepository) RevokeSession(_ context.Context, id string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok || session.RevokedAt != nil {
		return nil
	}
	session.RevokedAt = &now
	m.sessions[id] = session
	return nil
}

func (m *SessionRepository) RotateSession(_ context.Context, oldID string, now time.Time, next models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session, ok := m.sessions[oldID]; ok {
		session.RevokedAt = &now
		session.LastUsedAt = &now
		m.sessions[oldID] = session
	}
	m.sessions[next.ID] = next
	return nil
}

// Len reports the number of stored session rows, rotated ones included.
func (m *SessionRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}
