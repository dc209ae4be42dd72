package memory

import (
	"context"
	"sync"
	"time"
)

// MemStore is the in-memory Store used in tests and when Redis is not
// configured.
type MemStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewMemStore() *MemStore {
	return &MemStore{sessions: make(map[string]*Session)}
}

func (s *MemStore) Load(ctx context.Context, sessionID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[sessionID]; ok {
		copied := *session
		copied.Turns = append([]Turn(nil), session.Turns...)
		return &copied, nil
	}
	now := time.Now()
	return &Session{SessionID: sessionID, Turns: []Turn{}, StartedAt: now, LastActivity: now}, nil
}

func (s *MemStore) AppendTurn(ctx context.Context, sessionID string, turn Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		session = &Session{SessionID: sessionID, StartedAt: turn.Timestamp}
		s.sessions[sessionID] = session
	}
	session.Turns = append(session.Turns, turn)
	session.LastActivity = time.Now()
	return nil
}

func (s *MemStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func (s *MemStore) Close() error { return nil }
