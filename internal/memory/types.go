// Package memory persists per-session conversation history so LLM chat and
// intent analysis can see prior turns.
package memory

import (
	"context"
	"time"
)

// Turn is one stored conversation turn.
type Turn struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the persisted state of one conversation.
type Session struct {
	SessionID    string    `json:"session_id"`
	Turns        []Turn    `json:"turns"`
	StartedAt    time.Time `json:"started_at"`
	LastActivity time.Time `json:"last_activity"`
}

// Store persists sessions. Implementations are swappable: Redis in
// production, in-memory in tests.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Session, error)
	AppendTurn(ctx context.Context, sessionID string, turn Turn) error
	Clear(ctx context.Context, sessionID string) error
	Close() error
}
