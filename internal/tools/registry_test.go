package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/addy-assistant/addy/internal/intent"
	"github.com/addy-assistant/addy/internal/llm"
)

// fakeTool is a scriptable handler for registry tests.
type fakeTool struct {
	Base
	name    string
	intents []string
	execute func(intentName string, entities intent.Entities) intent.Result
	schemas map[string]llm.Schema
}

func newFakeTool(name string, intents ...string) *fakeTool {
	return &fakeTool{
		Base:    NewBase(zap.NewNop().Sugar(), nil),
		name:    name,
		intents: intents,
	}
}

func (f *fakeTool) Name() string               { return f.name }
func (f *fakeTool) Description() string        { return "fake " + f.name }
func (f *fakeTool) SupportedIntents() []string { return f.intents }

func (f *fakeTool) IntentSchemas() map[string]llm.Schema { return f.schemas }

func (f *fakeTool) Execute(ctx context.Context, intentName string, entities intent.Entities, originalText string) intent.Result {
	if f.execute != nil {
		return f.execute(intentName, entities)
	}
	return intent.Okf("%s handled %s", f.name, intentName)
}

func record(name string) intent.Record {
	return intent.Record{Intent: name, Entities: intent.Entities{}, Engine: intent.EngineRuleBased}
}

func TestRegistryRoutesIntent(t *testing.T) {
	r := NewRegistry(zap.NewNop().Sugar())
	r.Register(newFakeTool("alpha", "do_thing"))

	res := r.ExecuteIntent(context.Background(), record("do_thing"))
	assert.Equal(t, intent.KindOK, res.Kind)
	assert.Contains(t, res.Detail, "alpha")
}

func TestRegistryUnsupportedIntent(t *testing.T) {
	r := NewRegistry(zap.NewNop().Sugar())
	res := r.ExecuteIntent(context.Background(), record("fly_to_moon"))
	assert.Equal(t, intent.KindUnsupported, res.Kind)
	assert.Equal(t, "unsupported_intent: fly_to_moon", res.String())
}

func TestRegistryLastRegistrationWins(t *testing.T) {
	r := NewRegistry(zap.NewNop().Sugar())
	r.Register(newFakeTool("first", "shared_intent"))
	r.Register(newFakeTool("second", "shared_intent"))

	h := r.Resolve("shared_intent")
	require.NotNil(t, h)
	assert.Equal(t, "second", h.Name())

	res := r.ExecuteIntent(context.Background(), record("shared_intent"))
	assert.Contains(t, res.Detail, "second")
}

func TestRegistryRebuildKeepsRegistrationOrder(t *testing.T) {
	r := NewRegistry(zap.NewNop().Sugar())
	// "alpha" sorts before "zulu" but registers after it, so it must keep
	// the shared intent across rebuilds
	r.Register(newFakeTool("zulu", "shared_intent"))
	r.Register(newFakeTool("alpha", "shared_intent"))
	r.Register(newFakeTool("other", "other_intent"))

	require.Equal(t, "alpha", r.Resolve("shared_intent").Name())

	r.DisableTool("other")
	assert.Equal(t, "alpha", r.Resolve("shared_intent").Name())

	r.EnableTool("other")
	assert.Equal(t, "alpha", r.Resolve("shared_intent").Name())
}

func TestRegistryPanicContainment(t *testing.T) {
	r := NewRegistry(zap.NewNop().Sugar())

	calls := 0
	boom := newFakeTool("boom", "risky")
	boom.execute = func(intentName string, entities intent.Entities) intent.Result {
		calls++
		if calls == 1 {
			panic("handler bug")
		}
		return intent.Ok("recovered")
	}
	r.Register(boom)

	res := r.ExecuteIntent(context.Background(), record("risky"))
	assert.True(t, res.Failed())
	assert.Contains(t, res.String(), "execution_error")

	// the registry stays usable and the tool can serve the next request
	res = r.ExecuteIntent(context.Background(), record("risky"))
	assert.Equal(t, intent.KindOK, res.Kind)
}

func TestRegistryDisableEnable(t *testing.T) {
	r := NewRegistry(zap.NewNop().Sugar())
	r.Register(newFakeTool("alpha", "do_thing"))

	require.True(t, r.DisableTool("alpha"))
	res := r.ExecuteIntent(context.Background(), record("do_thing"))
	assert.Equal(t, intent.KindUnsupported, res.Kind)
	assert.Nil(t, r.Resolve("do_thing"))

	require.True(t, r.EnableTool("alpha"))
	res = r.ExecuteIntent(context.Background(), record("do_thing"))
	assert.Equal(t, intent.KindOK, res.Kind)

	assert.False(t, r.DisableTool("ghost"))
}

func TestRegistryDisabledToolClaimsNothing(t *testing.T) {
	r := NewRegistry(zap.NewNop().Sugar())
	tool := newFakeTool("alpha", "do_thing")
	tool.SetEnabled(false)
	r.Register(tool)

	assert.Nil(t, r.Resolve("do_thing"))
	assert.Empty(t, r.SupportedIntents())
}

func TestRegistryCatalog(t *testing.T) {
	r := NewRegistry(zap.NewNop().Sugar())
	tool := newFakeTool("weatherish", "get_weather", "get_forecast")
	tool.schemas = map[string]llm.Schema{
		"get_weather": {
			Required:   []string{"location"},
			Properties: map[string]llm.Property{"location": {Type: "string"}},
		},
	}
	r.Register(tool)

	catalog := r.Catalog()
	require.Len(t, catalog, 2)

	byName := map[string]llm.ToolSpec{}
	for _, spec := range catalog {
		byName[spec.Name] = spec
	}

	weather := byName["get_weather"]
	assert.Equal(t, []string{"location"}, weather.Schema.Required)

	forecast := byName["get_forecast"]
	assert.NotNil(t, forecast.Schema.Properties, "intents without a schema get an open object")
}
