package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerRecordsAndReplaysHistory(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemStore(), nil)

	require.NoError(t, m.RecordUserTurn(ctx, "s1", "你好"))
	require.NoError(t, m.RecordAssistantTurn(ctx, "s1", "你好，有什么可以帮你的吗？"))
	require.NoError(t, m.RecordUserTurn(ctx, "s1", "今天天气怎么样"))

	turns := m.History(ctx, "s1")
	require.Len(t, turns, 3)
	assert.Equal(t, "user", turns[0].Role)
	assert.Equal(t, "你好", turns[0].Content)
	assert.Equal(t, "assistant", turns[1].Role)
	assert.Equal(t, "user", turns[2].Role)
	assert.Equal(t, "今天天气怎么样", turns[2].Content)
}

func TestManagerSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemStore(), nil)

	require.NoError(t, m.RecordUserTurn(ctx, "a", "打开记事本"))
	require.NoError(t, m.RecordUserTurn(ctx, "b", "几点了"))

	assert.Len(t, m.History(ctx, "a"), 1)
	assert.Len(t, m.History(ctx, "b"), 1)
	assert.Equal(t, "打开记事本", m.History(ctx, "a")[0].Content)
	assert.Equal(t, 2, m.ActiveSessions())
}

func TestManagerRestoresFromStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	now := time.Now()
	require.NoError(t, store.AppendTurn(ctx, "s1", Turn{Role: "user", Content: "hello", Timestamp: now}))
	require.NoError(t, store.AppendTurn(ctx, "s1", Turn{Role: "assistant", Content: "hi", Timestamp: now}))
	// roles outside user/assistant are skipped on restore
	require.NoError(t, store.AppendTurn(ctx, "s1", Turn{Role: "system", Content: "noise", Timestamp: now}))

	m := NewManager(store, nil)
	turns := m.History(ctx, "s1")
	require.Len(t, turns, 2)
	assert.Equal(t, "hello", turns[0].Content)
	assert.Equal(t, "assistant", turns[1].Role)
}

func TestManagerClearSession(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	m := NewManager(store, nil)

	require.NoError(t, m.RecordUserTurn(ctx, "s1", "测试"))
	require.NoError(t, m.ClearSession(ctx, "s1"))

	assert.Equal(t, 0, m.ActiveSessions())
	assert.Empty(t, m.History(ctx, "s1"))

	session, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, session.Turns)
}

func TestSessionContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, DefaultSession, SessionFromContext(ctx))
	assert.Equal(t, "s1", SessionFromContext(WithSession(ctx, "s1")))
	assert.Equal(t, DefaultSession, SessionFromContext(WithSession(ctx, "")))
}

func TestMemStoreLoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	require.NoError(t, store.AppendTurn(ctx, "s1", Turn{Role: "user", Content: "one", Timestamp: time.Now()}))

	session, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	session.Turns[0].Content = "mutated"

	again, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "one", again.Turns[0].Content)
}
