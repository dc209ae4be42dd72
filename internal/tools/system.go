package tools

import (
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	gnet "github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"

	"github.com/addy-assistant/addy/internal/intent"
	"github.com/addy-assistant/addy/internal/speech"
)

const maxProcessList = 15

// SystemTool reports host metrics and manages processes. Volume control
// shells out to amixer through an injectable runner so it stays testable.
type SystemTool struct {
	Base
	client *http.Client
	run    func(ctx context.Context, name string, args ...string) (string, error)
}

func NewSystemTool(log *zap.SugaredLogger, speak speech.Sink) *SystemTool {
	return &SystemTool{
		Base:   NewBase(log, speak),
		client: &http.Client{Timeout: 10 * time.Second},
		run: func(ctx context.Context, name string, args ...string) (string, error) {
			out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
			return string(out), err
		},
	}
}

func (t *SystemTool) Name() string { return "system" }

func (t *SystemTool) Description() string {
	return "Reports system metrics, manages processes and checks website reachability"
}

func (t *SystemTool) SupportedIntents() []string {
	return []string{
		"get_system_info", "get_cpu_usage", "get_memory_usage", "get_disk_usage",
		"list_processes", "kill_process", "get_network_info",
		"set_volume", "get_volume", "check_website",
	}
}

func (t *SystemTool) Execute(ctx context.Context, intentName string, entities intent.Entities, originalText string) intent.Result {
	switch intentName {
	case "get_system_info":
		return t.systemInfo(ctx)
	case "get_cpu_usage":
		return t.cpuUsage(ctx)
	case "get_memory_usage":
		return t.memoryUsage(ctx)
	case "get_disk_usage":
		return t.diskUsage(ctx)
	case "list_processes":
		return t.listProcesses(ctx)
	case "kill_process":
		return t.killProcess(ctx, entities)
	case "get_network_info":
		return t.networkInfo(ctx)
	case "set_volume":
		return t.setVolume(ctx, entities)
	case "get_volume":
		return t.getVolume(ctx)
	case "check_website":
		return t.checkWebsite(ctx, entities)
	}
	return intent.UnsupportedIntent(intentName)
}

func (t *SystemTool) systemInfo(ctx context.Context) intent.Result {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return intent.Errorf("get_system_info_failed: %v", err)
	}
	t.Say(fmt.Sprintf("系统是%s，已运行%d小时。", info.Platform, info.Uptime/3600))
	return intent.Okf("system_info: %s %s (%s), uptime %dh",
		info.Platform, info.PlatformVersion, info.KernelArch, info.Uptime/3600)
}

func (t *SystemTool) cpuUsage(ctx context.Context) intent.Result {
	percents, err := cpu.PercentWithContext(ctx, time.Second, false)
	if err != nil || len(percents) == 0 {
		return intent.Errorf("get_cpu_usage_failed: %v", err)
	}
	t.Say(fmt.Sprintf("CPU使用率是百分之%.0f。", percents[0]))
	return intent.Okf("cpu_usage: %.1f%%", percents[0])
}

func (t *SystemTool) memoryUsage(ctx context.Context) intent.Result {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return intent.Errorf("get_memory_usage_failed: %v", err)
	}
	t.Say(fmt.Sprintf("内存使用率是百分之%.0f。", vm.UsedPercent))
	return intent.Okf("memory_usage: %.1f%% (%d/%d MB)",
		vm.UsedPercent, vm.Used/1024/1024, vm.Total/1024/1024)
}

func (t *SystemTool) diskUsage(ctx context.Context) intent.Result {
	usage, err := disk.UsageWithContext(ctx, "/")
	if err != nil {
		return intent.Errorf("get_disk_usage_failed: %v", err)
	}
	t.Say(fmt.Sprintf("磁盘使用率是百分之%.0f。", usage.UsedPercent))
	return intent.Okf("disk_usage: %.1f%% (%d/%d GB)",
		usage.UsedPercent, usage.Used/1024/1024/1024, usage.Total/1024/1024/1024)
}

func (t *SystemTool) listProcesses(ctx context.Context) intent.Result {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return intent.Errorf("list_processes_failed: %v", err)
	}
	names := make([]string, 0, len(procs))
	for _, p := range procs {
		if name, err := p.NameWithContext(ctx); err == nil && name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if len(names) > maxProcessList {
		names = names[:maxProcessList]
	}
	t.Say(fmt.Sprintf("共有%d个进程在运行。", len(procs)))
	return intent.Okf("processes: %s", strings.Join(names, ", "))
}

func (t *SystemTool) killProcess(ctx context.Context, entities intent.Entities) intent.Result {
	name, ok := entities.String("process_name")
	if !ok || name == "" {
		t.Say("您想结束哪个进程？")
		return intent.Clarify("process_name_missing")
	}
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return intent.Errorf("kill_process_failed: %v", err)
	}
	killed := 0
	for _, p := range procs {
		pname, err := p.NameWithContext(ctx)
		if err != nil || !strings.EqualFold(pname, name) {
			continue
		}
		if err := p.KillWithContext(ctx); err != nil {
			t.Log().Warnw("kill failed", "process", pname, "pid", p.Pid, "error", err)
			continue
		}
		killed++
	}
	if killed == 0 {
		t.Say("没有找到这个进程。")
		return intent.Errorf("process_not_found: %s", name).Spoken()
	}
	t.Say(fmt.Sprintf("已结束%d个进程。", killed))
	return intent.Okf("process_killed: %s (%d)", name, killed)
}

func (t *SystemTool) networkInfo(ctx context.Context) intent.Result {
	ifaces, err := gnet.InterfacesWithContext(ctx)
	if err != nil {
		return intent.Errorf("get_network_info_failed: %v", err)
	}
	var parts []string
	for _, iface := range ifaces {
		for _, addr := range iface.Addrs {
			if strings.HasPrefix(addr.Addr, "127.") {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s=%s", iface.Name, addr.Addr))
		}
	}
	t.Say("已获取网络信息。")
	return intent.Okf("network_info: %s", strings.Join(parts, ", "))
}

func (t *SystemTool) setVolume(ctx context.Context, entities intent.Entities) intent.Result {
	level, ok := entities.Int("level")
	if !ok {
		t.Say("您想把音量调到多少？")
		return intent.Clarify("volume_level_missing")
	}
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	if _, err := t.run(ctx, "amixer", "set", "Master", fmt.Sprintf("%d%%", level)); err != nil {
		return intent.Errorf("set_volume_failed: %v", err)
	}
	t.Say(fmt.Sprintf("音量已调到百分之%d。", level))
	return intent.Okf("volume_set: %d", level)
}

func (t *SystemTool) getVolume(ctx context.Context) intent.Result {
	out, err := t.run(ctx, "amixer", "get", "Master")
	if err != nil {
		return intent.Errorf("get_volume_failed: %v", err)
	}
	level := parseAmixerLevel(out)
	if level < 0 {
		return intent.Errorf("get_volume_failed: unparsable output")
	}
	t.Say(fmt.Sprintf("当前音量是百分之%d。", level))
	return intent.Okf("volume: %d", level)
}

var amixerLevelRe = regexp.MustCompile(`\[(\d+)%\]`)

// parseAmixerLevel pulls the first "[NN%]" token out of amixer output,
// returning -1 when none is present.
func parseAmixerLevel(out string) int {
	m := amixerLevelRe.FindStringSubmatch(out)
	if m == nil {
		return -1
	}
	level, err := strconv.Atoi(m[1])
	if err != nil {
		return -1
	}
	return level
}

func (t *SystemTool) checkWebsite(ctx context.Context, entities intent.Entities) intent.Result {
	rawURL, ok := entities.String("url")
	if !ok || rawURL == "" {
		t.Say("请告诉我网站地址。")
		return intent.Clarify("url_missing")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = "https://" + rawURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return intent.Errorf("check_website_failed: %v", err)
	}
	started := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		t.Say("网站无法访问。")
		return intent.Errorf("website_unreachable: %s", rawURL).Spoken()
	}
	resp.Body.Close()
	elapsed := time.Since(started)
	t.Say("网站可以正常访问。")
	return intent.Okf("website_status: %s %d (%dms)", rawURL, resp.StatusCode, elapsed.Milliseconds())
}
