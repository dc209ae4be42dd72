package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tmc/langchaingo/llms"
	lcmemory "github.com/tmc/langchaingo/memory"
	"go.uber.org/zap"

	"github.com/addy-assistant/addy/internal/llm"
)

// Manager layers a per-session LangChainGo conversation buffer over the
// persistent store. The buffer gives fast in-process access; the store
// survives restarts.
type Manager struct {
	mu      sync.Mutex
	store   Store
	buffers map[string]*lcmemory.ConversationBuffer
	log     *zap.SugaredLogger
}

func NewManager(store Store, log *zap.SugaredLogger) *Manager {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Manager{
		store:   store,
		buffers: make(map[string]*lcmemory.ConversationBuffer),
		log:     log,
	}
}

func (m *Manager) buffer(ctx context.Context, sessionID string) (*lcmemory.ConversationBuffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if buf, ok := m.buffers[sessionID]; ok {
		return buf, nil
	}

	buf := lcmemory.NewConversationBuffer()
	session, err := m.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	for _, turn := range session.Turns {
		var msg llms.ChatMessage
		switch turn.Role {
		case "user":
			msg = llms.HumanChatMessage{Content: turn.Content}
		case "assistant":
			msg = llms.AIChatMessage{Content: turn.Content}
		default:
			continue
		}
		if err := buf.ChatHistory.AddMessage(ctx, msg); err != nil {
			return nil, fmt.Errorf("restore turn: %w", err)
		}
	}

	m.buffers[sessionID] = buf
	m.log.Debugw("session restored", "session", sessionID, "turns", len(session.Turns))
	return buf, nil
}

// RecordUserTurn stores a user utterance in the buffer and the store.
func (m *Manager) RecordUserTurn(ctx context.Context, sessionID, text string) error {
	return m.record(ctx, sessionID, "user", text)
}

// RecordAssistantTurn stores an assistant reply in the buffer and the store.
func (m *Manager) RecordAssistantTurn(ctx context.Context, sessionID, text string) error {
	return m.record(ctx, sessionID, "assistant", text)
}

func (m *Manager) record(ctx context.Context, sessionID, role, text string) error {
	buf, err := m.buffer(ctx, sessionID)
	if err != nil {
		return err
	}

	switch role {
	case "user":
		err = buf.ChatHistory.AddUserMessage(ctx, text)
	case "assistant":
		err = buf.ChatHistory.AddAIMessage(ctx, text)
	}
	if err != nil {
		return fmt.Errorf("buffer turn: %w", err)
	}

	return m.store.AppendTurn(ctx, sessionID, Turn{
		Role:      role,
		Content:   text,
		Timestamp: time.Now(),
	})
}

// History returns the session's turns in the shape the LLM adapters consume.
func (m *Manager) History(ctx context.Context, sessionID string) []llm.Turn {
	buf, err := m.buffer(ctx, sessionID)
	if err != nil {
		m.log.Warnw("history unavailable", "session", sessionID, "error", err)
		return nil
	}
	messages, err := buf.ChatHistory.Messages(ctx)
	if err != nil {
		m.log.Warnw("history unavailable", "session", sessionID, "error", err)
		return nil
	}

	turns := make([]llm.Turn, 0, len(messages))
	for _, msg := range messages {
		switch msg.GetType() {
		case llms.ChatMessageTypeHuman:
			turns = append(turns, llm.Turn{Role: "user", Content: msg.GetContent()})
		case llms.ChatMessageTypeAI:
			turns = append(turns, llm.Turn{Role: "assistant", Content: msg.GetContent()})
		}
	}
	return turns
}

// ClearSession drops a session from the buffer cache and the store.
func (m *Manager) ClearSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.buffers, sessionID)
	m.mu.Unlock()
	return m.store.Clear(ctx, sessionID)
}

// ActiveSessions reports how many sessions are cached in process.
func (m *Manager) ActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buffers)
}

func (m *Manager) Close() error {
	return m.store.Close()
}
