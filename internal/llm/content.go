package llm

import (
	"encoding/json"
	"strings"
)

// safeUnknown is the degraded response every adapter falls back to when the
// backend is unreachable or its payload cannot be repaired.
func safeUnknown() string {
	return `{"intent": "unknown", "entities": {}}`
}

// rawFallback wraps an unparsable model reply so diagnostics survive
// normalization. The parse_error marker makes the parser tag the record
// llm_parse_error whether the reply was invalid JSON or valid JSON missing
// the intent field.
func rawFallback(content string) string {
	out, _ := json.Marshal(map[string]any{
		"intent":      "unknown",
		"entities":    map[string]any{"raw_response": content},
		"parse_error": true,
	})
	return string(out)
}

// stripFence removes a Markdown code fence wrapping a JSON object, then
// trims to the outermost brace pair.
func stripFence(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// parseEmbedded applies the embedded-JSON response policy: unwrap fences,
// decode, infer a missing intent from an embedded tool_call, and guarantee
// the intent/entities keys. Anything unrepairable becomes the raw_response
// fallback; the turn itself never fails.
func parseEmbedded(content string) string {
	jsonPart := stripFence(content)
	if jsonPart == "" {
		return rawFallback(content)
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(jsonPart), &parsed); err != nil {
		return rawFallback(content)
	}

	if _, ok := parsed["intent"]; !ok {
		tc, _ := parsed["tool_call"].(map[string]any)
		name, _ := tc["name"].(string)
		if name == "" {
			return rawFallback(content)
		}
		parsed["intent"] = name
		if _, ok := parsed["entities"]; !ok {
			if args, ok := tc["arguments"].(map[string]any); ok {
				parsed["entities"] = args
			}
		}
	}
	if _, ok := parsed["entities"]; !ok {
		parsed["entities"] = map[string]any{}
	}

	out, err := json.Marshal(parsed)
	if err != nil {
		return rawFallback(content)
	}
	return string(out)
}
