// Package tools owns the intent-to-handler mapping: the registry, the
// handler contract, and the built-in tool implementations.
package tools

import (
	"context"

	"go.uber.org/zap"

	"github.com/addy-assistant/addy/internal/intent"
	"github.com/addy-assistant/addy/internal/llm"
	"github.com/addy-assistant/addy/internal/speech"
)

// Handler is the contract every tool implements. The registry never inspects
// a handler beyond this surface.
type Handler interface {
	Name() string
	Description() string
	SupportedIntents() []string
	Execute(ctx context.Context, intentName string, entities intent.Entities, originalText string) intent.Result
	Enabled() bool
	SetEnabled(enabled bool)
}

// SchemaProvider is the optional capability of describing per-intent
// parameter schemas, used to build the native tool-calling catalog.
type SchemaProvider interface {
	IntentSchemas() map[string]llm.Schema
}

// Base carries the state and helpers shared by every tool: the enable flag,
// a logger, and the speech sink. Tools embed it and speak their own
// user-facing feedback.
type Base struct {
	enabled bool
	log     *zap.SugaredLogger
	speak   speech.Sink
}

// NewBase returns an enabled Base.
func NewBase(log *zap.SugaredLogger, speak speech.Sink) Base {
	return Base{enabled: true, log: log, speak: speak}
}

func (b *Base) Enabled() bool           { return b.enabled }
func (b *Base) SetEnabled(enabled bool) { b.enabled = enabled }

// Say forwards feedback to the speech sink, tolerating a nil sink.
func (b *Base) Say(text string) {
	if b.speak != nil {
		b.speak.Say(text)
	}
}

// Log returns the tool logger, never nil.
func (b *Base) Log() *zap.SugaredLogger {
	if b.log == nil {
		return zap.NewNop().Sugar()
	}
	return b.log
}
