package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/addy-assistant/addy/internal/desktop"
	"github.com/addy-assistant/addy/internal/intent"
	"github.com/addy-assistant/addy/internal/speech"
)

// DesktopTool drives window management, screen capture and input injection
// through a desktop.Controller.
type DesktopTool struct {
	Base
	ctrl desktop.Controller
}

func NewDesktopTool(ctrl desktop.Controller, log *zap.SugaredLogger, speak speech.Sink) *DesktopTool {
	return &DesktopTool{Base: NewBase(log, speak), ctrl: ctrl}
}

func (t *DesktopTool) Name() string { return "desktop" }

func (t *DesktopTool) Description() string {
	return "Manages windows, captures the screen and injects mouse and keyboard input"
}

func (t *DesktopTool) SupportedIntents() []string {
	return []string{
		"activate_window", "minimize_window", "maximize_window",
		"close_window", "list_windows",
		"capture_screen",
		"move_mouse", "click_mouse",
		"type_text", "press_key", "hotkey",
	}
}

func (t *DesktopTool) Execute(ctx context.Context, intentName string, entities intent.Entities, originalText string) intent.Result {
	switch intentName {
	case "activate_window", "minimize_window", "maximize_window", "close_window":
		return t.windowAction(intentName, entities)
	case "list_windows":
		return t.listWindows()
	case "capture_screen":
		return t.captureScreen(entities)
	case "move_mouse":
		return t.moveMouse(entities)
	case "click_mouse":
		return t.clickMouse(entities)
	case "type_text":
		return t.typeText(entities)
	case "press_key":
		return t.pressKey(entities)
	case "hotkey":
		return t.hotkey(entities)
	}
	return intent.UnsupportedIntent(intentName)
}

func (t *DesktopTool) windowAction(intentName string, entities intent.Entities) intent.Result {
	title, _ := entities.String("window_title")

	var err error
	switch intentName {
	case "activate_window":
		if title == "" {
			t.Say("您想切换到哪个窗口？")
			return intent.Clarify("window_title_missing")
		}
		err = t.ctrl.ActivateWindow(title)
	case "minimize_window":
		if title, err = t.currentTitle(title); err != nil {
			return intent.Errorf("active_window_unavailable: %v", err)
		}
		err = t.ctrl.MinimizeWindow(title)
	case "maximize_window":
		if title, err = t.currentTitle(title); err != nil {
			return intent.Errorf("active_window_unavailable: %v", err)
		}
		err = t.ctrl.MaximizeWindow(title)
	case "close_window":
		if title == "" {
			t.Say("您想关闭哪个窗口？")
			return intent.Clarify("window_title_missing")
		}
		err = t.ctrl.CloseWindow(title)
	}
	if err != nil {
		t.Log().Warnw("window action failed", "intent", intentName, "title", title, "error", err)
		return intent.Errorf("%s_failed: %s", intentName, title)
	}
	return intent.Okf("%s: %s", intentName, title)
}

// currentTitle resolves an empty target to the active window, matching the
// "最小化当前窗口" phrasing.
func (t *DesktopTool) currentTitle(title string) (string, error) {
	if title != "" {
		return title, nil
	}
	return t.ctrl.ActiveWindowTitle()
}

func (t *DesktopTool) listWindows() intent.Result {
	windows, err := t.ctrl.ListWindows()
	if err != nil {
		return intent.Errorf("list_windows_failed: %v", err)
	}
	if len(windows) == 0 {
		t.Say("当前没有打开的窗口。")
		return intent.Ok("windows: none")
	}
	t.Say(fmt.Sprintf("当前打开了%d个窗口。", len(windows)))
	return intent.Okf("windows: %s", strings.Join(windows, "; "))
}

func (t *DesktopTool) captureScreen(entities intent.Entities) intent.Result {
	filename, _ := entities.String("filename")
	if filename == "" {
		filename = fmt.Sprintf("screenshot_%s.png", time.Now().Format("20060102_150405"))
	}
	path, err := t.ctrl.CaptureScreen(filename, nil)
	if err != nil {
		return intent.Errorf("capture_screen_failed: %v", err)
	}
	t.Say("截图完成。")
	return intent.Okf("screenshot_saved: %s", path)
}

func (t *DesktopTool) moveMouse(entities intent.Entities) intent.Result {
	mv, ok := intent.DecodeMoveMouse(entities)
	if !ok {
		t.Say("请告诉我要移动到的坐标。")
		return intent.Clarify("mouse_coordinates_missing")
	}
	if err := t.ctrl.MoveMouse(mv.X, mv.Y, mv.Duration, mv.Relative); err != nil {
		return intent.Errorf("move_mouse_failed: %v", err)
	}
	return intent.Okf("mouse_moved: %d,%d", mv.X, mv.Y)
}

func (t *DesktopTool) clickMouse(entities intent.Entities) intent.Result {
	click := intent.DecodeClickMouse(entities)
	if err := t.ctrl.ClickMouse(click.X, click.Y, click.Button, click.Clicks); err != nil {
		return intent.Errorf("click_mouse_failed: %v", err)
	}
	return intent.Okf("mouse_clicked: %s x%d", click.Button, click.Clicks)
}

func (t *DesktopTool) typeText(entities intent.Entities) intent.Result {
	text, ok := entities.String("text")
	if !ok || text == "" {
		t.Say("您想输入什么内容？")
		return intent.Clarify("text_missing")
	}
	if err := t.ctrl.TypeText(text); err != nil {
		return intent.Errorf("type_text_failed: %v", err)
	}
	return intent.Okf("typed: %s", text)
}

func (t *DesktopTool) pressKey(entities intent.Entities) intent.Result {
	key, ok := entities.String("key_name")
	if !ok || key == "" {
		t.Say("您想按哪个键？")
		return intent.Clarify("key_name_missing")
	}
	if err := t.ctrl.PressKey(key); err != nil {
		return intent.Errorf("press_key_failed: %s", key)
	}
	return intent.Okf("key_pressed: %s", key)
}

func (t *DesktopTool) hotkey(entities intent.Entities) intent.Result {
	raw, ok := entities.String("keys")
	if !ok || raw == "" {
		t.Say("您想按哪个组合键？")
		return intent.Clarify("keys_missing")
	}
	keys := splitKeys(raw)
	if err := t.ctrl.Hotkey(keys...); err != nil {
		return intent.Errorf("hotkey_failed: %s", raw)
	}
	return intent.Okf("hotkey_pressed: %s", strings.Join(keys, "+"))
}

func splitKeys(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '+' || r == ' ' || r == '加'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return out
}
