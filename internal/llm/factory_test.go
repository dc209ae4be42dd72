package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/addy-assistant/addy/internal/config"
)

func TestFactorySelectsBackend(t *testing.T) {
	log := zap.NewNop().Sugar()

	svc, err := New(config.LLMConfig{APIType: "openai_compatible", APIKey: "k", Model: "m", Timeout: time.Second}, log)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIService{}, svc)

	svc, err = New(config.LLMConfig{APIType: "claude", APIKey: "k", Model: "m", Timeout: time.Second}, log)
	require.NoError(t, err)
	assert.IsType(t, &AnthropicService{}, svc)
}

func TestFactoryRejectsUnknownType(t *testing.T) {
	_, err := New(config.LLMConfig{APIType: "palm"}, zap.NewNop().Sugar())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported llm api type")
}
