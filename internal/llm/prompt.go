package llm

import (
	"encoding/json"
	"fmt"
)

// intentSystemPromptBase instructs the model to emit the canonical intent
// JSON without any tool catalog.
const intentSystemPromptBase = `You are an intent-recognition assistant for a voice-controlled desktop helper. ` +
	`Analyze the user's utterance and respond with a single JSON object containing "intent" and "entities". ` +
	`Known intents include: open_application, search_web, get_time, greeting, exit_assistant, ` +
	`capture_screen, move_mouse, click_mouse, type_text, press_key, hotkey, ` +
	`activate_window, minimize_window, maximize_window, close_window, list_windows, ` +
	`calculate, convert_unit, convert_temperature, get_weather, get_weather_forecast, ` +
	`create_file, delete_file, read_file, list_files, send_email, create_event, list_events, set_reminder. ` +
	`If the intent cannot be recognized, set "intent" to "unknown". Respond with JSON only.`

// intentSystemPromptWithTools additionally describes the available tools and
// the embedded tool_call convention, for backends without native function
// calling.
const intentSystemPromptWithTools = intentSystemPromptBase + "\n" +
	`When one of the tools below should be invoked, add a "tool_call" field: ` +
	`{"name": "<tool name>", "arguments": {<parameters>}}. Available tools:` + "\n%s"

// chatSystemPrompt drives free-text reply generation.
const chatSystemPrompt = `You are Addy, a friendly Chinese-speaking voice assistant. Give concise, helpful answers.`

// apologyReply is the fixed degraded answer when generation fails.
const apologyReply = "抱歉，我在处理您的请求时遇到了问题。"

// catalogPrompt renders the tool catalog for prompt injection.
func catalogPrompt(catalog Catalog) string {
	if len(catalog) == 0 {
		return fmt.Sprintf(intentSystemPromptWithTools, "[]")
	}
	desc, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return fmt.Sprintf(intentSystemPromptWithTools, "[]")
	}
	return fmt.Sprintf(intentSystemPromptWithTools, string(desc))
}
