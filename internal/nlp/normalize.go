package nlp

import (
	"github.com/addy-assistant/addy/internal/intent"
)

// Normalize merges raw engine output into a guaranteed-shape record so the
// dispatcher never needs to know which engine produced it. Rules, in order:
//
//  1. a nil/malformed mapping becomes the unknown record tagged
//     "<engine>_parse_error"
//  2. a missing or unknown intent is inferred from tool_call.name
//  3. empty entities are filled from tool_call.arguments
//  4. intent and entities always exist afterwards
//  5. original text and engine are stamped on
//
// Normalizing an already-normalized record returns it unchanged.
func Normalize(raw map[string]any, originalText string, engine intent.Engine) intent.Record {
	if raw == nil {
		return intent.UnknownRecord(originalText, engine+"_parse_error")
	}

	rec := intent.Record{
		OriginalText: originalText,
		Engine:       engine,
	}

	if name, ok := raw["intent"].(string); ok {
		rec.Intent = name
	}
	if ents, ok := raw["entities"].(map[string]any); ok {
		rec.Entities = intent.Entities(ents)
	}
	if tc, ok := raw["tool_call"].(map[string]any); ok {
		name, _ := tc["name"].(string)
		if name != "" {
			call := &intent.ToolCall{Name: name}
			if args, ok := tc["arguments"].(map[string]any); ok {
				call.Arguments = args
			}
			rec.ToolCall = call
		}
	}

	if (rec.Intent == "" || rec.Intent == intent.Unknown) && rec.ToolCall != nil {
		rec.Intent = rec.ToolCall.Name
		if len(rec.Entities) == 0 && rec.ToolCall.Arguments != nil {
			rec.Entities = rec.ToolCall.Arguments
		}
	}

	if rec.Intent == "" {
		rec.Intent = intent.Unknown
	}
	if rec.Entities == nil {
		rec.Entities = intent.Entities{}
	}

	return rec
}

// NormalizeRecord re-applies the normalization guarantees to an existing
// record. Idempotent for records that already satisfy them.
func NormalizeRecord(rec intent.Record) intent.Record {
	if (rec.Intent == "" || rec.Intent == intent.Unknown) && rec.ToolCall != nil && rec.ToolCall.Name != "" {
		rec.Intent = rec.ToolCall.Name
		if len(rec.Entities) == 0 && rec.ToolCall.Arguments != nil {
			rec.Entities = rec.ToolCall.Arguments
		}
	}
	if rec.Intent == "" {
		rec.Intent = intent.Unknown
	}
	if rec.Entities == nil {
		rec.Entities = intent.Entities{}
	}
	return rec
}
