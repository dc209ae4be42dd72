package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// LLMConfig selects and parameterizes one LLM backend.
type LLMConfig struct {
	APIType          string // openai_compatible | claude
	APIKey           string
	Model            string
	APIBase          string
	AnthropicVersion string
	Timeout          time.Duration
}

// WeatherConfig parameterizes the weather tool's HTTP backend.
type WeatherConfig struct {
	APIKey          string
	BaseURL         string
	DefaultLocation string
	Timeout         time.Duration
}

// EmailConfig parameterizes the email tool.
type EmailConfig struct {
	SendGridAPIKey string
	FromName       string
	FromAddress    string
}

type Config struct {
	// Service
	ServiceName string

	// NATS configuration
	NatsURL          string
	UtteranceSubject string
	SpeechSubject    string
	NatsTimeout      time.Duration

	// Redis-backed conversation memory and calendar storage
	RedisURL  string
	MemoryTTL time.Duration

	// NLP engine selection: rule_based or llm
	NLPEngine string
	LLM       LLMConfig

	// Wake words, owned here instead of ambient globals
	WakeWords []string

	Weather WeatherConfig
	Email   EmailConfig

	// Search engine URL template with a single %s verb for the query
	SearchURLTemplate string

	// Directory screenshots are written to; empty means the working dir
	ScreenshotDir string

	// Per-tool enable flags, keyed by registry tool name
	ToolEnabled map[string]bool
}

// toolNames lists every tool that honors an ADDY_TOOL_<NAME>_ENABLED flag.
var toolNames = []string{
	"assistant", "desktop", "file", "system", "calculator",
	"unit_conversion", "weather", "email", "calendar",
}

func Load() *Config {
	cfg := &Config{
		ServiceName: getEnv("SERVICE_NAME", "addy-assistant"),

		NatsURL:          getEnv("NATS_URL", "nats://localhost:4222"),
		UtteranceSubject: getEnv("NATS_UTTERANCE_SUBJECT", "assistant.utterance"),
		SpeechSubject:    getEnv("NATS_SPEECH_SUBJECT", "assistant.speech"),
		NatsTimeout:      getDurationEnv("NATS_TIMEOUT", 30*time.Second),

		RedisURL:  getEnv("REDIS_URL", "redis://localhost:6379/0"),
		MemoryTTL: getDurationEnv("MEMORY_TTL", 30*time.Minute),

		NLPEngine: strings.ToLower(getEnv("NLP_ENGINE", "rule_based")),
		LLM: LLMConfig{
			APIType:          strings.ToLower(getEnv("LLM_API_TYPE", "openai_compatible")),
			APIKey:           getEnv("LLM_API_KEY", ""),
			Model:            getEnv("LLM_MODEL", "gpt-4o-mini"),
			APIBase:          getEnv("LLM_API_BASE", ""), // adapters apply their vendor default
			AnthropicVersion: getEnv("LLM_ANTHROPIC_VERSION", "2023-06-01"),
			Timeout:          getDurationEnv("LLM_TIMEOUT", 30*time.Second),
		},

		WakeWords: splitList(getEnv("WAKE_WORDS", "addy,addy你好")),

		Weather: WeatherConfig{
			APIKey:          getEnv("WEATHER_API_KEY", ""),
			BaseURL:         getEnv("WEATHER_API_BASE", "https://api.openweathermap.org/data/2.5"),
			DefaultLocation: getEnv("WEATHER_DEFAULT_LOCATION", "Beijing"),
			Timeout:         getDurationEnv("WEATHER_TIMEOUT", 10*time.Second),
		},
		Email: EmailConfig{
			SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
			FromName:       getEnv("EMAIL_FROM_NAME", "Addy Assistant"),
			FromAddress:    getEnv("EMAIL_FROM_ADDRESS", ""),
		},

		SearchURLTemplate: getEnv("SEARCH_URL_TEMPLATE", "https://www.bing.com/search?q=%s"),
		ScreenshotDir:     getEnv("SCREENSHOT_DIR", ""),

		ToolEnabled: make(map[string]bool, len(toolNames)),
	}

	for _, name := range toolNames {
		key := "ADDY_TOOL_" + strings.ToUpper(name) + "_ENABLED"
		cfg.ToolEnabled[name] = getBoolEnv(key, true)
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
