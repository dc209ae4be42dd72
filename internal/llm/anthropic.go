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

// AnthropicService speaks the Anthropic Messages API. Tool calls arrive
// through the embedded-JSON protocol only; the catalog is injected into the
// system prompt.
type AnthropicService struct {
	apiKey  string
	model   string
	apiBase string
	version string
	client  *http.Client
	log     *zap.SugaredLogger

	catalog Catalog
}

func NewAnthropicService(apiKey, model, apiBase, version string, timeout time.Duration, log *zap.SugaredLogger) *AnthropicService {
	if apiBase == "" {
		apiBase = "https://api.anthropic.com/v1"
	}
	return &AnthropicService{
		apiKey:  apiKey,
		model:   model,
		apiBase: apiBase,
		version: version,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (s *AnthropicService) SupportedToolProtocols() []Protocol {
	return []Protocol{ProtocolEmbeddedJSON}
}

func (s *AnthropicService) SetToolCatalog(catalog Catalog) {
	s.catalog = catalog
	s.log.Debugw("tool catalog set", "tools", len(catalog))
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float64            `json:"temperature"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (s *AnthropicService) AnalyzeIntent(ctx context.Context, text string) (string, error) {
	if s.apiKey == "" {
		s.log.Warn("anthropic: api key not configured")
		return safeUnknown(), nil
	}

	system := intentSystemPromptBase
	if len(s.catalog) > 0 {
		system = catalogPrompt(s.catalog)
	}

	var resp anthropicResponse
	err := s.post(ctx, "/messages", anthropicRequest{
		Model:       s.model,
		MaxTokens:   1024,
		System:      system,
		Temperature: 0.1,
		Messages:    []anthropicMessage{{Role: "user", Content: text}},
	}, &resp)
	if err != nil {
		s.log.Warnw("anthropic: intent request failed", "error", err)
		return safeUnknown(), nil
	}
	if len(resp.Content) == 0 {
		s.log.Warn("anthropic: response has no content blocks")
		return safeUnknown(), nil
	}
	return parseEmbedded(resp.Content[0].Text), nil
}

func (s *AnthropicService) GenerateResponse(ctx context.Context, text string, history []Turn) string {
	if s.apiKey == "" {
		return apologyReply
	}

	messages := make([]anthropicMessage, 0, len(history)+1)
	for _, turn := range history {
		if turn.Role == "system" {
			continue // Messages API takes system content separately
		}
		messages = append(messages, anthropicMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, anthropicMessage{Role: "user", Content: text})

	var resp anthropicResponse
	err := s.post(ctx, "/messages", anthropicRequest{
		Model:       s.model,
		MaxTokens:   1024,
		System:      chatSystemPrompt,
		Temperature: 0.7,
		Messages:    messages,
	}, &resp)
	if err != nil || len(resp.Content) == 0 {
		s.log.Warnw("anthropic: generate failed", "error", err)
		return apologyReply
	}
	return resp.Content[0].Text
}

// Available sends a minimal message as a credential probe.
func (s *AnthropicService) Available(ctx context.Context) bool {
	if s.apiKey == "" {
		return false
	}
	var resp anthropicResponse
	err := s.post(ctx, "/messages", anthropicRequest{
		Model:     s.model,
		MaxTokens: 1,
		Messages:  []anthropicMessage{{Role: "user", Content: "ping"}},
	}, &resp)
	return err == nil
}

func (s *AnthropicService) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiBase+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", s.version)
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
