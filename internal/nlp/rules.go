// Package nlp turns recognized utterances into canonical intent records,
// through either the deterministic rule engine or a configured LLM service.
package nlp

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/addy-assistant/addy/internal/intent"
)

// Extractor configures how one entity is pulled out of a regex match.
// Exactly one of the three modes applies: a bare capture group, a group plus
// a normalizer, or a compute-from-match function.
type Extractor struct {
	// Group is the capture group index holding the entity text.
	Group int

	// Normalize, when set, maps the trimmed capture to its stored value.
	// It is not invoked when the group did not participate in the match.
	Normalize func(string) any

	// FromMatch, when set, computes the value from all submatches
	// (index 0 is the whole match). A panic during extraction yields a nil
	// entity instead of failing the parse.
	FromMatch func(match []string) any
}

// PatternRule binds one intent label to a compiled pattern and its entity
// extractors.
type PatternRule struct {
	Intent  string
	Pattern *regexp.Regexp
	Extract map[string]Extractor
}

// RuleEngine evaluates an ordered pattern table, first match wins. Matching
// is pure string work: deterministic, no I/O.
type RuleEngine struct {
	rules []PatternRule
	log   *zap.SugaredLogger
}

// NewRuleEngine builds the engine with the built-in pattern table.
func NewRuleEngine(log *zap.SugaredLogger) *RuleEngine {
	return &RuleEngine{rules: defaultRules(), log: log}
}

// NewRuleEngineWithRules builds an engine over an explicit table. The slice
// order is the evaluation order.
func NewRuleEngineWithRules(rules []PatternRule, log *zap.SugaredLogger) *RuleEngine {
	return &RuleEngine{rules: rules, log: log}
}

// Match lower-cases and trims the input, then walks the table top to bottom.
// The first pattern that search-matches decides the intent; remaining
// patterns are skipped. No pattern matching yields the unknown record.
func (e *RuleEngine) Match(text string) intent.Record {
	processed := strings.ToLower(strings.TrimSpace(text))
	rec := intent.UnknownRecord(text, intent.EngineRuleBased)

	for _, rule := range e.rules {
		m := rule.Pattern.FindStringSubmatch(processed)
		if m == nil {
			continue
		}
		rec.Intent = rule.Intent
		for name, ex := range rule.Extract {
			rec.Entities[name] = extractEntity(m, ex)
		}
		e.log.Debugw("rule matched", "intent", rec.Intent, "entities", rec.Entities)
		return rec
	}

	e.log.Debugw("no rule matched", "text", text)
	return rec
}

func extractEntity(m []string, ex Extractor) (v any) {
	if ex.FromMatch != nil {
		defer func() {
			if recover() != nil {
				v = nil
			}
		}()
		return ex.FromMatch(m)
	}
	if ex.Group <= 0 || ex.Group >= len(m) {
		return nil
	}
	raw := strings.TrimSpace(m[ex.Group])
	if raw == "" {
		// group did not participate; the normalizer is not invoked
		return nil
	}
	if ex.Normalize != nil {
		return ex.Normalize(raw)
	}
	return raw
}

// appNameMappings normalizes spoken application names to executables.
var appNameMappings = map[string]string{
	"记事本":        "notepad.exe",
	"notepad":    "notepad.exe",
	"计算器":        "calc.exe",
	"calculator": "calc.exe",
	"浏览器":        "browser",
	"chrome":     "chrome",
	"edge":       "msedge",
	"火狐":         "firefox",
	"word":       "winword.exe",
	"excel":      "excel.exe",
}

func normalizeAppName(name string) any {
	key := strings.ToLower(strings.TrimSpace(name))
	if mapped, ok := appNameMappings[key]; ok {
		return mapped
	}
	return key
}

func group(n int) Extractor { return Extractor{Group: n} }

func rule(intentName, pattern string, extract map[string]Extractor) PatternRule {
	return PatternRule{
		Intent:  intentName,
		Pattern: regexp.MustCompile(pattern),
		Extract: extract,
	}
}

// defaultRules is the ordered table. Order is significant: earlier entries
// shadow later ones for overlapping inputs, so the specific forms (forecast
// before plain 天气, the 文件 rules before the broad launcher and search
// patterns) come first.
func defaultRules() []PatternRule {
	return []PatternRule{
		rule("exit_assistant", `^(再见|拜拜|退出|关闭助手|别说了)$`, nil),
		rule("greeting", `^(你好|哈喽|嗨|在吗|你好呀)$`, nil),
		rule("get_time", `(现在几点|当前时间|几点钟了|报时)`, nil),

		rule("open_application",
			`(打开|启动|运行|开一下|帮我打开)(?:一个)?(?:叫做)?\s*([\p{Han}\w\s]+?)(?:程序|应用|软件)(?:吧|呀|行吗)?$`,
			map[string]Extractor{"application_name": {Group: 2, Normalize: normalizeAppName}}),
		rule("search_web_generic", `^(搜索|查找|查一下|搜一下)$`, nil),

		// Window management; the exact list phrasing goes first so the
		// 显示...窗口 activation form cannot claim it
		rule("list_windows", `(列出所有窗口|显示所有窗口|有哪些窗口|打开了哪些窗口)`, nil),
		rule("activate_window",
			`(激活|切换到)(?:名为|标题为|叫做)?\s*["']?(.+?)["']?(?:的)?(?:窗口)?$`,
			map[string]Extractor{"window_title": group(2)}),
		rule("activate_window",
			`(显示)(?:名为|标题为|叫做)?\s*["']?(.+?)["']?(?:的)?窗口$`,
			map[string]Extractor{"window_title": group(2)}),
		rule("minimize_window", `(最小化当前窗口|最小化活动窗口|最小化这个窗口|最小化窗口)`, nil),
		rule("minimize_window",
			`(最小化)(?:名为|标题为|叫做)?\s*["']?(.+?)["']?(?:的)?(?:窗口)?$`,
			map[string]Extractor{"window_title": group(2)}),
		rule("maximize_window", `(最大化当前窗口|最大化活动窗口|最大化这个窗口|最大化窗口)`, nil),
		rule("maximize_window",
			`(最大化)(?:名为|标题为|叫做)?\s*["']?(.+?)["']?(?:的)?(?:窗口)?$`,
			map[string]Extractor{"window_title": group(2)}),
		rule("close_window",
			`(关闭)(?:名为|标题为|叫做)?\s*["']?(.+?)["']?(?:的)?窗口`,
			map[string]Extractor{"window_title": group(2)}),

		// Desktop control
		rule("capture_screen",
			`(截屏|截图|屏幕截图|截个图)(?:并保存为)?\s*([\w\-.]+)?(?:到)?\s*([\d,]+)?`,
			map[string]Extractor{"filename": group(2), "region": group(3)}),
		rule("move_mouse",
			`(移动鼠标|鼠标移动|鼠标移到|把鼠标放到)(?:到)?\s*([-\d]+)\s*[,，]\s*([-\d]+)(?:相对位置)?(?:持续时间)?\s*([\d.]+)?s?`,
			map[string]Extractor{
				"x": group(2), "y": group(3), "duration": group(4),
				"relative": {FromMatch: func(m []string) any { return strings.Contains(m[0], "相对位置") }},
			}),
		rule("move_mouse",
			`(鼠标相对移动|相对移动鼠标)(?:到)?\s*([-\d]+)\s*[,，]\s*([-\d]+)(?:持续时间)?\s*([\d.]+)?s?`,
			map[string]Extractor{
				"x": group(2), "y": group(3), "duration": group(4),
				"relative": {FromMatch: func(m []string) any { return true }},
			}),
		rule("click_mouse",
			`(点击鼠标|鼠标点击|单击)(?:在)?\s*([-\d]+)\s*[,，]\s*([-\d]+)(?:用)?(左键|右键|中键)?(?:(\d+)次)?`,
			map[string]Extractor{"x": group(2), "y": group(3), "button": group(4), "clicks": group(5)}),
		rule("click_mouse",
			`(点击鼠标|鼠标点击|单击)(?:用)?(左键|右键|中键)?(?:(\d+)次)?`,
			map[string]Extractor{"button": group(2), "clicks": group(3)}),
		rule("type_text",
			`(输入文本|打字|输入)\s*(.+)`,
			map[string]Extractor{"text": group(2)}),
		rule("hotkey",
			`(按下组合键|执行组合键|组合键)\s*(.+)`,
			map[string]Extractor{"keys": group(2)}),
		rule("press_key",
			`(按下|按一下|按)\s*([\p{Han}\w\s+]+?)\s*(?:键)?$`,
			map[string]Extractor{"key_name": group(2)}),

		// File operations
		rule("create_file",
			`(创建|新建)(?:一个)?文件\s*(.+?)(?:在|到)\s*(.+)`,
			map[string]Extractor{"filename": group(2), "path": group(3)}),
		rule("create_file",
			`(创建|新建)(?:一个)?文件\s*(.+)`,
			map[string]Extractor{"filename": group(2)}),
		rule("delete_file",
			`(删除|移除)文件\s*(.+)`,
			map[string]Extractor{"path": group(2)}),
		rule("copy_file",
			`(复制|拷贝)文件\s*(.+?)(?:到)\s*(.+)`,
			map[string]Extractor{"source": group(2), "destination": group(3)}),
		rule("move_file",
			`(移动|剪切)文件\s*(.+?)(?:到)\s*(.+)`,
			map[string]Extractor{"source": group(2), "destination": group(3)}),
		rule("search_files",
			`(搜索|查找)文件\s*(.+?)(?:在)\s*(.+)`,
			map[string]Extractor{"pattern": group(2), "directory": group(3)}),
		rule("search_files",
			`(搜索|查找)文件\s*(.+)`,
			map[string]Extractor{"pattern": group(2)}),
		rule("list_files",
			`(列出|显示)(?:目录|文件夹)\s*(.+?)(?:的|中的)?(?:文件|内容)`,
			map[string]Extractor{"directory": group(2)}),
		rule("read_file",
			`(读取|查看|打开)文件\s*(.+)`,
			map[string]Extractor{"path": group(2)}),

		// The broad launcher form sits below the 文件 rules so 打开文件 keeps
		// meaning read_file.
		rule("open_application",
			`(打开|启动|运行|开一下|帮我打开)\s*([\p{Han}\w\s]+?)(?:吧|呀|行吗)?$`,
			map[string]Extractor{"application_name": {Group: 2, Normalize: normalizeAppName}}),

		// System information
		rule("get_system_info", `(获取|查看|显示)(?:系统|电脑)信息`, nil),
		rule("get_cpu_usage", `(获取|查看|显示)(?:cpu|处理器)(?:使用率|占用率)`, nil),
		rule("get_memory_usage", `(获取|查看|显示)(?:内存|ram)(?:使用率|占用率)`, nil),
		rule("get_disk_usage", `(获取|查看|显示)(?:磁盘|硬盘)(?:使用率|占用率|空间)`, nil),
		rule("list_processes", `(列出|显示)(?:所有)?(?:进程|程序)`, nil),
		rule("kill_process",
			`(结束|终止|杀死)进程\s*(.+)`,
			map[string]Extractor{"process_name": group(2)}),
		rule("get_network_info", `(获取|查看|显示)网络信息`, nil),
		rule("set_volume",
			`(设置|调整)音量(?:到|为)\s*(\d+)`,
			map[string]Extractor{"level": group(2)}),
		rule("get_volume", `(获取|查看|显示)(?:当前)?音量`, nil),

		// Calculator and unit conversion
		rule("calculate",
			`(计算|算一下)\s*(.+)`,
			map[string]Extractor{"expression": group(2)}),
		rule("convert_temperature",
			`(转换|换算)温度\s*(\d+(?:\.\d+)?)\s*(摄氏度|华氏度|开尔文)(?:到|为)\s*(摄氏度|华氏度|开尔文)`,
			map[string]Extractor{"value": group(2), "from_unit": group(3), "to_unit": group(4)}),
		rule("convert_unit",
			`(转换|换算)\s*(\d+(?:\.\d+)?)\s*([\p{Han}\w]+?)(?:到|为)\s*([\p{Han}\w]+)`,
			map[string]Extractor{"value": group(2), "from_unit": group(3), "to_unit": group(4)}),

		// Weather: the more specific forecast and air-quality forms must
		// precede the bare 天气 pattern.
		rule("get_weather_forecast",
			`(查看|获取|显示)(?:(.+?)的)?天气预报`,
			map[string]Extractor{"location": group(2)}),
		rule("get_air_quality",
			`(查看|获取|显示)(?:(.+?)的)?空气质量`,
			map[string]Extractor{"location": group(2)}),
		rule("get_weather",
			`(查看|获取|显示)(?:(.+?)的)?天气`,
			map[string]Extractor{"location": group(2)}),

		// Email
		rule("send_email",
			`(发送|发)邮件(?:给|到)\s*(.+?)(?:主题|标题)\s*(.+?)(?:内容|正文)\s*(.+)`,
			map[string]Extractor{"to": group(2), "subject": group(3), "body": group(4)}),
		rule("read_emails", `(查看|读取|显示)(?:最新的|未读的)?邮件`, nil),
		rule("search_emails",
			`(搜索|查找)邮件\s*(.+)`,
			map[string]Extractor{"query": group(2)}),

		// General web search sits below the file and email search forms;
		// RE2 has no lookahead to carve those out of the broad pattern.
		rule("search_web",
			`(搜索|查找|查一下|搜一下)(?:关于)?\s*(.+?)(?:的信息|内容)?(?:吧|呀|行吗)?$`,
			map[string]Extractor{"search_query": group(2)}),

		// Calendar
		rule("create_event",
			`(创建|新建|添加)(?:日程|事件|活动)\s*(.+?)(?:在|时间)\s*(.+)`,
			map[string]Extractor{"title": group(2), "datetime": group(3)}),
		rule("list_events", `(查看|显示|列出)(?:今天|明天|本周|本月)?(?:的)?(?:日程|事件|活动)`, nil),
		rule("set_reminder",
			`(设置|添加)提醒\s*(.+?)(?:在|时间)\s*(.+)`,
			map[string]Extractor{"message": group(2), "datetime": group(3)}),
		rule("get_date_info", `(今天|明天|后天)是(?:几号|什么日期|星期几)`, nil),

		// Web operations
		rule("download_file",
			`(下载)文件\s*(.+?)(?:到|保存到)\s*(.+)`,
			map[string]Extractor{"url": group(2), "path": group(3)}),
		rule("download_file",
			`(下载)文件\s*(.+)`,
			map[string]Extractor{"url": group(2)}),
		rule("check_website",
			`(检查|测试)网站\s*(.+)`,
			map[string]Extractor{"url": group(2)}),
		rule("translate_text",
			`(翻译)\s*(.+?)(?:到|为)\s*([\p{Han}\w]+)`,
			map[string]Extractor{"text": group(2), "target_language": group(3)}),
	}
}
