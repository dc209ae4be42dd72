// Package dispatch routes normalized intent records to tool handlers and
// turns outcomes into spoken feedback.
package dispatch

import (
	"context"

	"go.uber.org/zap"

	"github.com/addy-assistant/addy/internal/intent"
	"github.com/addy-assistant/addy/internal/speech"
	"github.com/addy-assistant/addy/internal/tools"
)

// Dispatcher owns the routing order: an explicit tool call always wins over
// the recognized intent name.
type Dispatcher struct {
	registry *tools.Registry
	speak    speech.Sink
	log      *zap.SugaredLogger
}

func New(registry *tools.Registry, speak speech.Sink, log *zap.SugaredLogger) *Dispatcher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Dispatcher{registry: registry, speak: speak, log: log}
}

// Execute routes one record. Handlers speak their own feedback; the
// dispatcher only speaks for outcomes no handler produced, so a
// clarification prompt is voiced exactly once.
func (d *Dispatcher) Execute(ctx context.Context, rec intent.Record) intent.Result {
	if rec.ToolCall != nil {
		if res, routed := d.executeToolCall(ctx, rec); routed {
			return d.finish(rec, res)
		}
	}

	res := d.registry.ExecuteIntent(ctx, rec)
	return d.finish(rec, res)
}

// executeToolCall routes an explicit tool call through the registry under
// the called name. routed is false when no tool owns the name, letting the
// recognized intent take over.
func (d *Dispatcher) executeToolCall(ctx context.Context, rec intent.Record) (intent.Result, bool) {
	call := rec.ToolCall
	callRec := intent.Record{
		Intent:       call.Name,
		Entities:     intent.Entities(call.Arguments),
		OriginalText: rec.OriginalText,
		Engine:       rec.Engine,
	}
	if callRec.Entities == nil {
		callRec.Entities = intent.Entities{}
	}

	res := d.registry.ExecuteIntent(ctx, callRec)
	if res.Kind == intent.KindUnsupported {
		d.log.Warnw("tool call names no registered tool", "tool", call.Name, "intent", rec.Intent)
		return intent.Result{}, false
	}
	if res.Failed() {
		res.Code = "tool_execution_failed"
		res.Detail = call.Name
	}
	return res, true
}

func (d *Dispatcher) finish(rec intent.Record, res intent.Result) intent.Result {
	switch {
	case res.Kind == intent.KindUnsupported:
		d.say("我还不会做这件事。")
		d.log.Infow("unsupported intent", "intent", rec.Intent, "engine", rec.Engine)
	case res.Kind == intent.KindUnhandled:
		d.say("抱歉，我不知道该怎么处理。")
		d.log.Infow("unhandled intent", "intent", rec.Intent, "engine", rec.Engine)
	case res.Failed():
		// the detail stays in logs, users get a generic apology unless
		// the handler already voiced a more specific one
		if !res.Voiced {
			d.say("抱歉，执行的时候出了点问题。")
		}
		d.log.Errorw("intent execution failed",
			"intent", rec.Intent, "engine", rec.Engine, "result", res.String())
	case res.Kind == intent.KindExit:
		d.log.Infow("exit requested", "intent", rec.Intent)
	default:
		d.log.Infow("intent executed",
			"intent", rec.Intent, "engine", rec.Engine, "result", res.String())
	}
	return res
}

func (d *Dispatcher) say(text string) {
	if d.speak != nil {
		d.speak.Say(text)
	}
}
