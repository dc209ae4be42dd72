package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, payload string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &out))
	return out
}

func TestStripFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"intent": "x"}`, `{"intent": "x"}`},
		{"json fence", "```json\n{\"intent\": \"x\"}\n```", `{"intent": "x"}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", `Sure! Here you go: {"a":1} hope it helps`, `{"a":1}`},
		{"no object", "no braces here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripFence(tt.in))
		})
	}
}

func TestParseEmbeddedValid(t *testing.T) {
	out := decode(t, parseEmbedded(`{"intent": "get_time", "entities": {}}`))
	assert.Equal(t, "get_time", out["intent"])
}

func TestParseEmbeddedInfersIntentFromToolCall(t *testing.T) {
	in := `{"tool_call": {"name": "get_weather", "arguments": {"location": "上海"}}}`
	out := decode(t, parseEmbedded(in))
	assert.Equal(t, "get_weather", out["intent"])
	ents, ok := out["entities"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "上海", ents["location"])
}

func TestParseEmbeddedGarbageBecomesTaggedFallback(t *testing.T) {
	out := decode(t, parseEmbedded("the model rambled instead of answering"))
	assert.Equal(t, "unknown", out["intent"])
	assert.Equal(t, true, out["parse_error"])
	ents := out["entities"].(map[string]any)
	assert.Contains(t, ents["raw_response"], "rambled")
}

func TestParseEmbeddedValidJSONWithoutIntent(t *testing.T) {
	// valid JSON missing both intent and tool_call gets the same marker as
	// invalid JSON
	out := decode(t, parseEmbedded(`{"mood": "confused"}`))
	assert.Equal(t, "unknown", out["intent"])
	assert.Equal(t, true, out["parse_error"])
}

func TestSafeUnknownShape(t *testing.T) {
	out := decode(t, safeUnknown())
	assert.Equal(t, "unknown", out["intent"])
	assert.NotNil(t, out["entities"])
}
