package tools

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/addy-assistant/addy/internal/intent"
	"github.com/addy-assistant/addy/internal/speech"
)

// CalendarTool creates events and reminders and lists upcoming schedule
// entries through an EventStore.
type CalendarTool struct {
	Base
	store EventStore
	now   func() time.Time
}

func NewCalendarTool(store EventStore, log *zap.SugaredLogger, speak speech.Sink) *CalendarTool {
	return &CalendarTool{Base: NewBase(log, speak), store: store, now: time.Now}
}

func (t *CalendarTool) Name() string { return "calendar" }

func (t *CalendarTool) Description() string {
	return "Creates calendar events and reminders and lists the schedule"
}

func (t *CalendarTool) SupportedIntents() []string {
	return []string{"create_event", "list_events", "set_reminder"}
}

func (t *CalendarTool) Execute(ctx context.Context, intentName string, entities intent.Entities, originalText string) intent.Result {
	switch intentName {
	case "create_event":
		return t.createEvent(ctx, entities, false)
	case "set_reminder":
		return t.createReminder(ctx, entities)
	case "list_events":
		return t.listEvents(ctx, originalText)
	}
	return intent.UnsupportedIntent(intentName)
}

func (t *CalendarTool) createEvent(ctx context.Context, entities intent.Entities, reminder bool) intent.Result {
	title, ok := entities.String("title")
	if !ok || title == "" {
		t.Say("日程的标题是什么？")
		return intent.Clarify("event_title_missing")
	}
	return t.saveEvent(ctx, title, entities, reminder)
}

func (t *CalendarTool) createReminder(ctx context.Context, entities intent.Entities) intent.Result {
	message, ok := entities.String("message")
	if !ok || message == "" {
		t.Say("您想让我提醒什么？")
		return intent.Clarify("reminder_message_missing")
	}
	return t.saveEvent(ctx, message, entities, true)
}

func (t *CalendarTool) saveEvent(ctx context.Context, title string, entities intent.Entities, reminder bool) intent.Result {
	raw, _ := entities.String("datetime")
	when, ok := parseWhen(raw, t.now())
	if !ok {
		t.Say("请告诉我具体时间。")
		return intent.Clarify("event_datetime_missing")
	}

	event := Event{Title: title, StartsAt: when, Reminder: reminder}
	if err := t.store.Add(ctx, event); err != nil {
		t.Log().Warnw("store event failed", "title", title, "error", err)
		return intent.Errorf("create_event_failed: %v", err)
	}
	kind := "日程"
	if reminder {
		kind = "提醒"
	}
	t.Say(fmt.Sprintf("好的，%s已创建：%s。", kind, title))
	return intent.Okf("event_created: %s at %s", title, when.Format("2006-01-02 15:04"))
}

func (t *CalendarTool) listEvents(ctx context.Context, originalText string) intent.Result {
	now := t.now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0)
	switch {
	case strings.Contains(originalText, "今天"):
		to = from.AddDate(0, 0, 1)
	case strings.Contains(originalText, "明天"):
		from = from.AddDate(0, 0, 1)
		to = from.AddDate(0, 0, 1)
	case strings.Contains(originalText, "本周"):
		to = from.AddDate(0, 0, 7)
	}

	events, err := t.store.List(ctx, from, to)
	if err != nil {
		return intent.Errorf("list_events_failed: %v", err)
	}
	if len(events) == 0 {
		t.Say("这段时间没有安排。")
		return intent.Ok("events: none")
	}

	var parts []string
	for _, ev := range events {
		parts = append(parts, fmt.Sprintf("%s %s", ev.StartsAt.Format("01-02 15:04"), ev.Title))
	}
	t.Say(fmt.Sprintf("这段时间有%d个安排。", len(events)))
	return intent.Okf("events: %s", strings.Join(parts, "; "))
}

var clockRe = regexp.MustCompile(`(上午|下午|晚上|早上)?(\d{1,2})点(?:(\d{1,2})分|半)?`)

// parseWhen turns a spoken datetime like "明天下午3点" or a literal layout
// like "2026-09-01 15:00" into a concrete time. Day words default to 9:00
// when no clock is given.
func parseWhen(raw string, now time.Time) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"} {
		if ts, err := time.ParseInLocation(layout, raw, now.Location()); err == nil {
			return ts, true
		}
	}

	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch {
	case strings.Contains(raw, "后天"):
		day = day.AddDate(0, 0, 2)
	case strings.Contains(raw, "明天"):
		day = day.AddDate(0, 0, 1)
	case strings.Contains(raw, "今天"):
	default:
		// no day word and no layout match; a bare clock still counts as today
		if !clockRe.MatchString(raw) {
			return time.Time{}, false
		}
	}

	hour, minute := 9, 0
	if m := clockRe.FindStringSubmatch(raw); m != nil {
		hour, _ = strconv.Atoi(m[2])
		if m[3] != "" {
			minute, _ = strconv.Atoi(m[3])
		} else if strings.Contains(m[0], "半") {
			minute = 30
		}
		if (m[1] == "下午" || m[1] == "晚上") && hour < 12 {
			hour += 12
		}
	}
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute), true
}
