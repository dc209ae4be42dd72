// Package intent defines the canonical record exchanged between the
// recognition paths (rule engine, LLM adapters) and the dispatcher.
package intent

import "strconv"

// Unknown is the explicit no-match sentinel intent.
const Unknown = "unknown"

// Engine tags the provenance of a record. Never used for routing,
// only diagnostics.
type Engine string

const (
	EngineRuleBased     Engine = "rule_based"
	EngineLLM           Engine = "llm"
	EngineLLMError      Engine = "llm_error"
	EngineLLMParseError Engine = "llm_parse_error"
	EngineLLMException  Engine = "llm_exception"
)

// ToolCall is an explicit structured invocation request, typically emitted
// by an LLM instead of (or alongside) a free-text intent guess. When present
// on a Record it takes dispatch priority over Intent/Entities.
type ToolCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Record is the single canonical value produced by either recognition path.
// Records are built fresh per utterance and never mutated after leaving the
// normalizer.
type Record struct {
	Intent       string    `json:"intent"`
	Entities     Entities  `json:"entities"`
	OriginalText string    `json:"original_text"`
	Engine       Engine    `json:"engine"`
	ToolCall     *ToolCall `json:"tool_call,omitempty"`
}

// UnknownRecord builds the safe no-match record for the given input.
func UnknownRecord(originalText string, engine Engine) Record {
	return Record{
		Intent:       Unknown,
		Entities:     Entities{},
		OriginalText: originalText,
		Engine:       engine,
	}
}

// Entities maps intent-specific parameter names to extracted values.
// An absent key is distinguishable from an empty string, and a present key
// may hold a nil value when a capture group did not participate.
type Entities map[string]any

// Has reports whether the key is present with a non-nil value.
func (e Entities) Has(key string) bool {
	v, ok := e[key]
	return ok && v != nil
}

// String returns the entity as a string. Numeric values are formatted,
// everything else reports false.
func (e Entities) String(key string) (string, bool) {
	v, ok := e[key]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

// Int parses the entity as an integer, accepting JSON numbers and
// numeric strings.
func (e Entities) Int(key string) (int, bool) {
	v, ok := e[key]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case float64:
		return int(t), true
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// Float parses the entity as a float64.
func (e Entities) Float(key string) (float64, bool) {
	v, ok := e[key]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Bool reads the entity as a boolean.
func (e Entities) Bool(key string) bool {
	v, ok := e[key]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(t)
		return err == nil && b
	}
	return false
}
