package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/addy-assistant/addy/internal/intent"
)

func newTestEngine(t *testing.T) *RuleEngine {
	t.Helper()
	return NewRuleEngine(zap.NewNop().Sugar())
}

func TestMatchNoRule(t *testing.T) {
	e := newTestEngine(t)
	rec := e.Match("呜啦啦啦")
	assert.Equal(t, intent.Unknown, rec.Intent)
	assert.Equal(t, intent.EngineRuleBased, rec.Engine)
	assert.NotNil(t, rec.Entities)
	assert.Equal(t, "呜啦啦啦", rec.OriginalText)
}

func TestMatchPreservesOriginalCase(t *testing.T) {
	e := newTestEngine(t)
	rec := e.Match("  打开Notepad  ")
	assert.Equal(t, "open_application", rec.Intent)
	assert.Equal(t, "  打开Notepad  ", rec.OriginalText, "original text is kept verbatim")
	name, _ := rec.Entities.String("application_name")
	assert.Equal(t, "notepad.exe", name, "matching runs on the lowercased form")
}

func TestMatchIntents(t *testing.T) {
	tests := []struct {
		text     string
		intent   string
		entities map[string]string
	}{
		{"再见", "exit_assistant", nil},
		{"你好", "greeting", nil},
		{"现在几点了", "get_time", nil},
		{"打开记事本", "open_application", map[string]string{"application_name": "notepad.exe"}},
		{"启动计算器程序", "open_application", map[string]string{"application_name": "calc.exe"}},
		{"搜索golang教程", "search_web", map[string]string{"search_query": "golang教程"}},
		{"搜索", "search_web_generic", nil},
		{"切换到记事本窗口", "activate_window", map[string]string{"window_title": "记事本"}},
		{"最小化当前窗口", "minimize_window", nil},
		{"显示所有窗口", "list_windows", nil},
		{"截图", "capture_screen", nil},
		{"输入文本 hello world", "type_text", map[string]string{"text": "hello world"}},
		{"按下回车键", "press_key", map[string]string{"key_name": "回车"}},
		{"创建文件 notes.txt", "create_file", map[string]string{"filename": "notes.txt"}},
		{"删除文件 old.log", "delete_file", map[string]string{"path": "old.log"}},
		{"打开文件 readme.md", "read_file", map[string]string{"path": "readme.md"}},
		{"搜索文件 report", "search_files", map[string]string{"pattern": "report"}},
		{"查看系统信息", "get_system_info", nil},
		{"查看cpu使用率", "get_cpu_usage", nil},
		{"设置音量到50", "set_volume", map[string]string{"level": "50"}},
		{"计算 2+3*4", "calculate", map[string]string{"expression": "2+3*4"}},
		{"转换 100 千米到米", "convert_unit", map[string]string{"value": "100", "from_unit": "千米", "to_unit": "米"}},
		{"查看北京的天气", "get_weather", map[string]string{"location": "北京"}},
		{"发邮件给 a@b.com 主题 会议 内容 下午三点开会", "send_email", map[string]string{"to": "a@b.com", "subject": "会议", "body": "下午三点开会"}},
		{"创建日程 团队评审 在 明天下午3点", "create_event", map[string]string{"title": "团队评审", "datetime": "明天下午3点"}},
		{"今天是星期几", "get_date_info", nil},
		{"检查网站 example.com", "check_website", map[string]string{"url": "example.com"}},
		{"翻译 你好 为英文", "translate_text", map[string]string{"text": "你好", "target_language": "英文"}},
	}

	e := newTestEngine(t)
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			rec := e.Match(tt.text)
			require.Equal(t, tt.intent, rec.Intent)
			for key, want := range tt.entities {
				got, ok := rec.Entities.String(key)
				require.True(t, ok, "entity %s missing", key)
				assert.Equal(t, want, got, "entity %s", key)
			}
		})
	}
}

func TestOverlappingPatternsFirstMatchWins(t *testing.T) {
	e := newTestEngine(t)

	// the forecast form must not degrade into a plain weather lookup
	rec := e.Match("查看上海的天气预报")
	assert.Equal(t, "get_weather_forecast", rec.Intent)
	loc, _ := rec.Entities.String("location")
	assert.Equal(t, "上海", loc)

	rec = e.Match("查看上海的空气质量")
	assert.Equal(t, "get_air_quality", rec.Intent)

	rec = e.Match("查看上海的天气")
	assert.Equal(t, "get_weather", rec.Intent)

	// 转换温度 is claimed by the temperature rule, never the generic one
	rec = e.Match("转换温度 25 摄氏度到华氏度")
	assert.Equal(t, "convert_temperature", rec.Intent)
}

func TestMoveMouseExtraction(t *testing.T) {
	e := newTestEngine(t)

	rec := e.Match("移动鼠标到 100,200")
	require.Equal(t, "move_mouse", rec.Intent)
	x, _ := rec.Entities.Int("x")
	y, _ := rec.Entities.Int("y")
	assert.Equal(t, 100, x)
	assert.Equal(t, 200, y)
	assert.False(t, rec.Entities.Bool("relative"))
	assert.Nil(t, rec.Entities["duration"], "unparticipating group stays nil")

	rec = e.Match("鼠标相对移动 -50,30")
	require.Equal(t, "move_mouse", rec.Intent)
	assert.True(t, rec.Entities.Bool("relative"), "relative form sets the flag via FromMatch")
	x, _ = rec.Entities.Int("x")
	assert.Equal(t, -50, x)
}

func TestClickMouseWithoutCoordinates(t *testing.T) {
	e := newTestEngine(t)
	rec := e.Match("点击鼠标右键2次")
	require.Equal(t, "click_mouse", rec.Intent)
	button, _ := rec.Entities.String("button")
	assert.Equal(t, "右键", button)
	clicks, _ := rec.Entities.Int("clicks")
	assert.Equal(t, 2, clicks)
	assert.False(t, rec.Entities.Has("x"))
}

func TestFromMatchPanicYieldsNilEntity(t *testing.T) {
	rules := []PatternRule{
		rule("boom", `(test)\s*(.+)`, map[string]Extractor{
			"value": {FromMatch: func(m []string) any { panic("extractor bug") }},
			"other": group(2),
		}),
	}
	e := NewRuleEngineWithRules(rules, zap.NewNop().Sugar())

	rec := e.Match("test payload")
	require.Equal(t, "boom", rec.Intent)
	assert.False(t, rec.Entities.Has("value"), "panicking extractor degrades to nil")
	other, _ := rec.Entities.String("other")
	assert.Equal(t, "payload", other, "remaining extractors still run")
}
