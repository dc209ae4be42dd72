package tools

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/addy-assistant/addy/internal/desktop"
	"github.com/addy-assistant/addy/internal/intent"
	"github.com/addy-assistant/addy/internal/llm"
	"github.com/addy-assistant/addy/internal/speech"
)

// AssistantTool covers the assistant's own conversational surface: greetings,
// time and date, launching applications, web search, and the free-text chat
// fallback when an LLM backend is configured.
type AssistantTool struct {
	Base
	ctrl      desktop.Controller
	chat      llm.Service // nil when running rule-based only
	searchURL string      // template with one %s verb
	history   func(ctx context.Context) []llm.Turn
	now       func() time.Time
}

func NewAssistantTool(ctrl desktop.Controller, chat llm.Service, searchURL string, log *zap.SugaredLogger, speak speech.Sink) *AssistantTool {
	return &AssistantTool{
		Base:      NewBase(log, speak),
		ctrl:      ctrl,
		chat:      chat,
		searchURL: searchURL,
		now:       time.Now,
	}
}

// SetHistoryProvider attaches a conversation-history source for chat turns.
func (t *AssistantTool) SetHistoryProvider(fn func(ctx context.Context) []llm.Turn) {
	t.history = fn
}

func (t *AssistantTool) Name() string { return "assistant" }

func (t *AssistantTool) Description() string {
	return "Greets, tells time and date, opens applications, searches the web and chats"
}

func (t *AssistantTool) SupportedIntents() []string {
	return []string{
		"greeting", "exit_assistant", "get_time", "get_date_info",
		"open_application", "open_application_generic",
		"search_web", "search_web_generic",
		"translate_text", "chat", intent.Unknown,
	}
}

func (t *AssistantTool) IntentSchemas() map[string]llm.Schema {
	return map[string]llm.Schema{
		"open_application": {
			Required: []string{"application_name"},
			Properties: map[string]llm.Property{
				"application_name": {Type: "string", Description: "Executable or well-known application name"},
			},
		},
		"search_web": {
			Required: []string{"search_query"},
			Properties: map[string]llm.Property{
				"search_query": {Type: "string", Description: "Search engine query"},
			},
		},
		"translate_text": {
			Required: []string{"text"},
			Properties: map[string]llm.Property{
				"text":            {Type: "string"},
				"target_language": {Type: "string", Description: "Target language, defaults to English"},
			},
		},
	}
}

func (t *AssistantTool) Execute(ctx context.Context, intentName string, entities intent.Entities, originalText string) intent.Result {
	switch intentName {
	case "greeting":
		t.Say("你好！我是Addy，有什么可以帮您的吗？")
		return intent.Ok("greeted")
	case "exit_assistant":
		t.Say("再见！")
		return intent.Exit()
	case "get_time":
		now := t.now()
		t.Say(fmt.Sprintf("现在是%d点%d分", now.Hour(), now.Minute()))
		return intent.Okf("current_time: %s", now.Format("15:04"))
	case "get_date_info":
		return t.dateInfo(originalText)
	case "open_application", "open_application_generic":
		return t.openApplication(entities)
	case "search_web":
		return t.searchWeb(entities)
	case "search_web_generic":
		t.Say("您想搜索什么？")
		return intent.Clarify("search_query_missing")
	case "translate_text":
		return t.translate(ctx, entities)
	case "chat", intent.Unknown:
		return t.chatReply(ctx, originalText)
	}
	return intent.UnsupportedIntent(intentName)
}

var weekdayNames = map[time.Weekday]string{
	time.Sunday: "星期日", time.Monday: "星期一", time.Tuesday: "星期二",
	time.Wednesday: "星期三", time.Thursday: "星期四",
	time.Friday: "星期五", time.Saturday: "星期六",
}

func (t *AssistantTool) dateInfo(originalText string) intent.Result {
	day := t.now()
	label := "今天"
	switch {
	case strings.Contains(originalText, "后天"):
		day = day.AddDate(0, 0, 2)
		label = "后天"
	case strings.Contains(originalText, "明天"):
		day = day.AddDate(0, 0, 1)
		label = "明天"
	}
	t.Say(fmt.Sprintf("%s是%d年%d月%d日，%s",
		label, day.Year(), day.Month(), day.Day(), weekdayNames[day.Weekday()]))
	return intent.Okf("date_info: %s", day.Format("2006-01-02"))
}

func (t *AssistantTool) openApplication(entities intent.Entities) intent.Result {
	name, ok := entities.String("application_name")
	if !ok || name == "" {
		t.Say("您想打开哪个应用程序？")
		return intent.Clarify("application_name_missing")
	}
	t.Say("正在打开" + name)
	if err := t.ctrl.OpenApplication(name); err != nil {
		t.Log().Warnw("open application failed", "app", name, "error", err)
		return intent.Errorf("open_application_failed: %s", name)
	}
	return intent.Okf("opening %s", name)
}

func (t *AssistantTool) searchWeb(entities intent.Entities) intent.Result {
	query, ok := entities.String("search_query")
	if !ok || query == "" {
		t.Say("您想搜索什么？")
		return intent.Clarify("search_query_missing")
	}
	target := fmt.Sprintf(t.searchURL, url.QueryEscape(query))
	t.Say("正在为您搜索" + query)
	if err := t.ctrl.OpenURL(target); err != nil {
		t.Log().Warnw("open search url failed", "url", target, "error", err)
		return intent.Errorf("search_web_failed: %s", query)
	}
	return intent.Okf("searching %s", query)
}

func (t *AssistantTool) translate(ctx context.Context, entities intent.Entities) intent.Result {
	text, ok := entities.String("text")
	if !ok || text == "" {
		t.Say("您想翻译什么内容？")
		return intent.Clarify("text_missing")
	}
	if t.chat == nil {
		t.Say("翻译功能需要配置语言模型。")
		return intent.Ok("translation_unavailable")
	}
	target, _ := entities.String("target_language")
	if target == "" {
		target = "英文"
	}
	reply := t.chat.GenerateResponse(ctx,
		fmt.Sprintf("请把下面的内容翻译成%s，只输出译文：%s", target, text), nil)
	t.Say(reply)
	return intent.Okf("translated: %s", reply)
}

func (t *AssistantTool) chatReply(ctx context.Context, originalText string) intent.Result {
	if t.chat == nil {
		t.Say("抱歉，我不太明白您的意思。")
		return intent.UnhandledIntent(intent.Unknown)
	}
	var history []llm.Turn
	if t.history != nil {
		history = t.history(ctx)
	}
	reply := t.chat.GenerateResponse(ctx, originalText, history)
	t.Say(reply)
	return intent.Okf("chat_reply: %s", reply)
}
