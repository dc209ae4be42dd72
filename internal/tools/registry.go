package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/addy-assistant/addy/internal/intent"
	"github.com/addy-assistant/addy/internal/llm"
)

// Registry maps intents to the tool that handles them. Registration is
// last-wins: when two tools claim the same intent the later registration
// takes over and the conflict is logged.
type Registry struct {
	mu       sync.RWMutex
	tools    map[string]Handler // tool name -> handler
	order    []string           // tool names in registration order, for rebuilds
	byIntent map[string]Handler // intent -> owning handler
	log      *zap.SugaredLogger
}

func NewRegistry(log *zap.SugaredLogger) *Registry {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Registry{
		tools:    make(map[string]Handler),
		byIntent: make(map[string]Handler),
		log:      log,
	}
}

// Register adds a tool and claims its supported intents. Disabled tools are
// recorded but claim nothing until enabled.
func (r *Registry) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, seen := r.tools[h.Name()]; !seen {
		r.order = append(r.order, h.Name())
	}
	r.tools[h.Name()] = h
	if !h.Enabled() {
		r.log.Infow("tool registered disabled", "tool", h.Name())
		return
	}
	r.claimIntents(h)
}

func (r *Registry) claimIntents(h Handler) {
	for _, it := range h.SupportedIntents() {
		if prev, ok := r.byIntent[it]; ok && prev.Name() != h.Name() {
			r.log.Warnw("intent remapped", "intent", it, "from", prev.Name(), "to", h.Name())
		}
		r.byIntent[it] = h
	}
}

// Resolve returns the handler owning an intent, or nil.
func (r *Registry) Resolve(intentName string) Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byIntent[intentName]
}

// Tool returns a registered tool by name, or nil.
func (r *Registry) Tool(name string) Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// ExecuteIntent routes an intent to its handler. A missing or disabled owner
// yields an unsupported result; a panicking handler is contained and reported
// as an execution error without poisoning the registry.
func (r *Registry) ExecuteIntent(ctx context.Context, rec intent.Record) (res intent.Result) {
	h := r.Resolve(rec.Intent)
	if h == nil || !h.Enabled() {
		return intent.UnsupportedIntent(rec.Intent)
	}

	defer func() {
		if p := recover(); p != nil {
			r.log.Errorw("tool panicked", "tool", h.Name(), "intent", rec.Intent, "panic", p)
			res = intent.ExecutionError(fmt.Sprintf("%s: %v", rec.Intent, p))
		}
	}()
	return h.Execute(ctx, rec.Intent, rec.Entities, rec.OriginalText)
}

// EnableTool enables a tool and rebuilds the intent map so the tool's
// intents are claimed again in registration order.
func (r *Registry) EnableTool(name string) bool {
	return r.setEnabled(name, true)
}

// DisableTool disables a tool and releases its intents.
func (r *Registry) DisableTool(name string) bool {
	return r.setEnabled(name, false)
}

func (r *Registry) setEnabled(name string, enabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.tools[name]
	if !ok {
		return false
	}
	h.SetEnabled(enabled)
	r.rebuild()
	r.log.Infow("tool toggled", "tool", name, "enabled", enabled)
	return true
}

// rebuild re-claims intents in registration order, so the last-wins rule
// holds across enable/disable toggles.
func (r *Registry) rebuild() {
	r.byIntent = make(map[string]Handler)
	for _, name := range r.order {
		h := r.tools[name]
		if h.Enabled() {
			r.claimIntents(h)
		}
	}
}

// SupportedIntents lists every intent currently claimed by an enabled tool.
func (r *Registry) SupportedIntents() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	intents := make([]string, 0, len(r.byIntent))
	for it := range r.byIntent {
		intents = append(intents, it)
	}
	sort.Strings(intents)
	return intents
}

// Catalog builds the tool-calling catalog: one spec per claimed intent so a
// model-side function call names the intent directly. Handlers implementing
// SchemaProvider contribute parameter schemas; everything else gets an open
// object schema.
func (r *Registry) Catalog() llm.Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var specs []llm.ToolSpec
	intents := make([]string, 0, len(r.byIntent))
	for it := range r.byIntent {
		intents = append(intents, it)
	}
	sort.Strings(intents)

	for _, it := range intents {
		h := r.byIntent[it]
		spec := llm.ToolSpec{
			Name:        it,
			Description: h.Description(),
			Schema:      llm.Schema{Properties: map[string]llm.Property{}},
		}
		if sp, ok := h.(SchemaProvider); ok {
			if schema, ok := sp.IntentSchemas()[it]; ok {
				spec.Schema = schema
			}
		}
		specs = append(specs, spec)
	}
	return llm.Catalog(specs)
}
