package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// OpenAIService speaks the OpenAI-compatible chat-completions protocol.
// It prefers native function calling when a tool catalog is set, translating
// the vendor tool_calls shape into the canonical tool_call object, and falls
// back to embedded-JSON parsing otherwise.
type OpenAIService struct {
	apiKey  string
	model   string
	apiBase string
	client  *http.Client
	log     *zap.SugaredLogger

	catalog     Catalog
	nativeTools []openAITool
}

func NewOpenAIService(apiKey, model, apiBase string, timeout time.Duration, log *zap.SugaredLogger) *OpenAIService {
	if apiBase == "" {
		apiBase = "https://api.openai.com/v1"
	}
	return &OpenAIService{
		apiKey:  apiKey,
		model:   model,
		apiBase: apiBase,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (s *OpenAIService) SupportedToolProtocols() []Protocol {
	return []Protocol{ProtocolNativeFunctionCalling, ProtocolEmbeddedJSON}
}

// SetToolCatalog stores the catalog and prebuilds the native tool schema.
func (s *OpenAIService) SetToolCatalog(catalog Catalog) {
	s.catalog = catalog
	s.nativeTools = make([]openAITool, 0, len(catalog))
	for _, spec := range catalog {
		params := spec.Schema
		if params.Properties == nil {
			params.Properties = map[string]Property{}
		}
		if params.Required == nil {
			params.Required = []string{}
		}
		s.nativeTools = append(s.nativeTools, openAITool{
			Type: "function",
			Function: openAIFunction{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters: openAIParameters{
					Type:       "object",
					Properties: params.Properties,
					Required:   params.Required,
				},
			},
		})
	}
	s.log.Debugw("tool catalog set", "tools", len(s.nativeTools))
}

type openAIParameters struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

type openAIFunction struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Parameters  openAIParameters `json:"parameters"`
}

type openAITool struct {
	Type     string         `json:"type"`
	Function openAIFunction `json:"function"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	Tools       []openAITool    `json:"tools,omitempty"`
	ToolChoice  string          `json:"tool_choice,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
}

// AnalyzeIntent asks the model for an intent JSON. All transport and parse
// failures degrade to the safe unknown shape; the error return is always nil.
func (s *OpenAIService) AnalyzeIntent(ctx context.Context, text string) (string, error) {
	if s.apiKey == "" {
		s.log.Warn("openai: api key not configured")
		return safeUnknown(), nil
	}

	req := openAIRequest{
		Model:       s.model,
		Temperature: 0.1,
		Messages: []openAIMessage{
			{Role: "user", Content: text},
		},
	}
	switch {
	case len(s.nativeTools) > 0:
		req.Tools = s.nativeTools
		req.ToolChoice = "auto"
		req.Messages = append([]openAIMessage{{Role: "system", Content: intentSystemPromptBase}}, req.Messages...)
	case len(s.catalog) > 0:
		req.Messages = append([]openAIMessage{{Role: "system", Content: catalogPrompt(s.catalog)}}, req.Messages...)
	default:
		req.Messages = append([]openAIMessage{{Role: "system", Content: intentSystemPromptBase}}, req.Messages...)
	}

	var resp openAIResponse
	if err := s.post(ctx, "/chat/completions", req, &resp); err != nil {
		s.log.Warnw("openai: intent request failed", "error", err)
		return safeUnknown(), nil
	}
	if len(resp.Choices) == 0 {
		s.log.Warn("openai: response has no choices")
		return safeUnknown(), nil
	}

	msg := resp.Choices[0].Message
	if len(msg.ToolCalls) > 0 {
		call := msg.ToolCalls[0].Function
		var args map[string]any
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			s.log.Warnw("openai: tool arguments not valid JSON", "tool", call.Name, "error", err)
			return rawFallback(call.Arguments), nil
		}
		// The tool name doubles as the intent so downstream consumers never
		// special-case the native protocol.
		out, _ := json.Marshal(map[string]any{
			"intent":   call.Name,
			"entities": args,
			"tool_call": map[string]any{
				"name":      call.Name,
				"arguments": args,
			},
		})
		s.log.Debugw("openai: native tool call", "tool", call.Name)
		return string(out), nil
	}

	return parseEmbedded(msg.Content), nil
}

// GenerateResponse produces a free-text reply, falling back to a fixed
// apology on any failure.
func (s *OpenAIService) GenerateResponse(ctx context.Context, text string, history []Turn) string {
	if s.apiKey == "" {
		return apologyReply
	}

	messages := make([]openAIMessage, 0, len(history)+2)
	messages = append(messages, openAIMessage{Role: "system", Content: chatSystemPrompt})
	for _, turn := range history {
		messages = append(messages, openAIMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: text})

	var resp openAIResponse
	err := s.post(ctx, "/chat/completions", openAIRequest{
		Model:       s.model,
		Messages:    messages,
		Temperature: 0.7,
	}, &resp)
	if err != nil || len(resp.Choices) == 0 {
		s.log.Warnw("openai: generate failed", "error", err)
		return apologyReply
	}
	return resp.Choices[0].Message.Content
}

// Available probes the models endpoint as a connectivity and credential
// check.
func (s *OpenAIService) Available(ctx context.Context) bool {
	if s.apiKey == "" {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiBase+"/models", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	resp, err := s.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

func (s *OpenAIService) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiBase+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, snippet)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
