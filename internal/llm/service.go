// Package llm abstracts the heterogeneous LLM backends behind one contract.
// Every adapter normalizes its vendor response shape into the same JSON
// object ({"intent": ..., "entities": ..., "tool_call": ...}) so downstream
// consumers never special-case the backend.
package llm

import "context"

// Protocol names a tool-calling protocol an adapter can honor.
type Protocol string

const (
	// ProtocolNativeFunctionCalling means the backend accepts a structured
	// tool schema and signals invocations in its own function-call format.
	ProtocolNativeFunctionCalling Protocol = "native_function_calling"

	// ProtocolEmbeddedJSON means tool calls arrive embedded in the model's
	// free-text reply as a JSON object.
	ProtocolEmbeddedJSON Protocol = "embedded_json"
)

// Turn is one prior conversation turn used as generation context.
type Turn struct {
	Role    string `json:"role"` // "user", "assistant" or "system"
	Content string `json:"content"`
}

// Service is the adapter contract. AnalyzeIntent must return a JSON object
// string containing at least "intent" and "entities"; on any transport
// failure, non-200 response or unparsable payload it returns the safe
// {"intent":"unknown","entities":{}} shape instead of an error. The error
// return is reserved for conditions outside that contract and is expected
// to stay nil.
type Service interface {
	AnalyzeIntent(ctx context.Context, text string) (string, error)
	GenerateResponse(ctx context.Context, text string, history []Turn) string
	Available(ctx context.Context) bool
	SupportedToolProtocols() []Protocol
}

// ToolAware is the optional capability of accepting a tool catalog. Adapters
// implementing it build a prompt-injectable description and, when they
// support native function calling, a structured tool schema.
type ToolAware interface {
	SetToolCatalog(catalog Catalog)
}

// Property describes one tool parameter for schema generation.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// Schema lists a tool's parameters and which of them are required.
type Schema struct {
	Required   []string            `json:"required"`
	Properties map[string]Property `json:"properties"`
}

// ToolSpec describes one invocable capability. Name doubles as the intent
// the dispatcher routes on when the model requests the call.
type ToolSpec struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Schema      Schema `json:"parameters"`
}

// Catalog is the full set of tool specs exposed to a backend.
type Catalog []ToolSpec
