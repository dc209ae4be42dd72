package nlp

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/addy-assistant/addy/internal/intent"
	"github.com/addy-assistant/addy/internal/llm"
)

// EngineRuleBased and EngineLLM name the two recognition paths.
const (
	EngineRuleBased = "rule_based"
	EngineLLM       = "llm"
)

// Parser selects and drives the configured recognition path and hands every
// result through normalization, so callers always receive a well-formed
// record.
type Parser struct {
	engine  string
	rules   *RuleEngine
	service llm.Service
	log     *zap.SugaredLogger
}

// NewParser builds a parser. When the llm engine is requested without a
// service, the parser falls back to rule-based matching.
func NewParser(engine string, service llm.Service, rules *RuleEngine, log *zap.SugaredLogger) *Parser {
	if engine != EngineRuleBased && engine != EngineLLM {
		log.Warnw("unknown nlp engine, defaulting to rule_based", "engine", engine)
		engine = EngineRuleBased
	}
	if engine == EngineLLM && service == nil {
		log.Warn("llm engine selected but no service configured, falling back to rule_based")
		engine = EngineRuleBased
	}
	return &Parser{engine: engine, rules: rules, service: service, log: log}
}

// Parse turns one utterance into a normalized intent record. Empty input is
// an immediate unknown; the call never fails.
func (p *Parser) Parse(ctx context.Context, text string) intent.Record {
	if text == "" {
		return intent.UnknownRecord("", intent.Engine(p.engine))
	}

	var rec intent.Record
	if p.engine == EngineLLM {
		rec = p.parseLLM(ctx, text)
	} else {
		rec = NormalizeRecord(p.rules.Match(text))
	}

	if rec.Intent == intent.Unknown {
		p.log.Infow("no intent recognized", "engine", rec.Engine, "text", text)
	} else {
		p.log.Infow("intent recognized", "engine", rec.Engine, "intent", rec.Intent, "entities", rec.Entities)
	}
	return rec
}

func (p *Parser) parseLLM(ctx context.Context, text string) intent.Record {
	if p.service == nil {
		return intent.UnknownRecord(text, intent.EngineLLMError)
	}
	payload, err := p.service.AnalyzeIntent(ctx, text)
	if err != nil {
		// outside the adapter contract; treated as an execution fault
		p.log.Errorw("llm intent analysis failed", "error", err)
		return intent.UnknownRecord(text, intent.EngineLLMException)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		p.log.Warnw("llm response is not a JSON object", "error", err, "payload", payload)
		rec := intent.UnknownRecord(text, intent.EngineLLMParseError)
		rec.Entities["raw_llm_response"] = payload
		return rec
	}

	engine := intent.EngineLLM
	if marked, ok := raw["parse_error"].(bool); ok && marked {
		engine = intent.EngineLLMParseError
		delete(raw, "parse_error")
	}

	rec := Normalize(raw, text, engine)
	if rec.ToolCall != nil {
		p.log.Infow("llm requested tool call", "tool", rec.ToolCall.Name)
	}
	return rec
}
