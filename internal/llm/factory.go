package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/addy-assistant/addy/internal/config"
)

// New builds the adapter selected by cfg.APIType.
func New(cfg config.LLMConfig, log *zap.SugaredLogger) (Service, error) {
	switch cfg.APIType {
	case "openai", "openai_compatible":
		return NewOpenAIService(cfg.APIKey, cfg.Model, cfg.APIBase, cfg.Timeout, log), nil
	case "claude", "anthropic":
		return NewAnthropicService(cfg.APIKey, cfg.Model, cfg.APIBase, cfg.AnthropicVersion, cfg.Timeout, log), nil
	default:
		return nil, fmt.Errorf("unsupported llm api type: %q", cfg.APIType)
	}
}
