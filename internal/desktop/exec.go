package desktop

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ExecController drives the desktop through the standard X11 command-line
// utilities: xdotool for windows and input, wmctrl for listing, scrot for
// captures, xdg-open for URLs and files.
type ExecController struct {
	screenshotDir string
	log           *zap.SugaredLogger
}

func NewExecController(screenshotDir string, log *zap.SugaredLogger) *ExecController {
	if screenshotDir == "" {
		screenshotDir = "."
	}
	return &ExecController{screenshotDir: screenshotDir, log: log}
}

func (c *ExecController) run(name string, args ...string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%s not installed: %w", name, err)
	}
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %w (%s)", name, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (c *ExecController) OpenApplication(name string) error {
	// launch detached so the assistant loop is not blocked
	cmd := exec.Command(name)
	if err := cmd.Start(); err != nil {
		c.log.Debugw("direct launch failed, trying xdg-open", "app", name, "error", err)
		return c.run("xdg-open", name)
	}
	go cmd.Wait()
	return nil
}

func (c *ExecController) OpenURL(url string) error {
	return c.run("xdg-open", url)
}

func (c *ExecController) ActivateWindow(title string) error {
	return c.run("xdotool", "search", "--name", title, "windowactivate")
}

func (c *ExecController) MinimizeWindow(title string) error {
	return c.run("xdotool", "search", "--name", title, "windowminimize")
}

func (c *ExecController) MaximizeWindow(title string) error {
	return c.run("wmctrl", "-r", title, "-b", "add,maximized_vert,maximized_horz")
}

func (c *ExecController) CloseWindow(title string) error {
	return c.run("wmctrl", "-c", title)
}

func (c *ExecController) ListWindows() ([]string, error) {
	if _, err := exec.LookPath("wmctrl"); err != nil {
		return nil, fmt.Errorf("wmctrl not installed: %w", err)
	}
	out, err := exec.Command("wmctrl", "-l").Output()
	if err != nil {
		return nil, fmt.Errorf("wmctrl -l: %w", err)
	}
	var titles []string
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		// wmctrl -l columns: id, desktop, host, title...
		fields := strings.SplitN(line, " ", 4)
		if len(fields) == 4 {
			if title := strings.TrimSpace(fields[3]); title != "" {
				titles = append(titles, title)
			}
		}
	}
	return titles, nil
}

func (c *ExecController) ActiveWindowTitle() (string, error) {
	if _, err := exec.LookPath("xdotool"); err != nil {
		return "", fmt.Errorf("xdotool not installed: %w", err)
	}
	out, err := exec.Command("xdotool", "getactivewindow", "getwindowname").Output()
	if err != nil {
		return "", fmt.Errorf("xdotool getactivewindow: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (c *ExecController) CaptureScreen(filename string, region *Region) (string, error) {
	if filename == "" {
		filename = "screenshot.png"
	}
	path := filepath.Join(c.screenshotDir, filename)
	args := []string{}
	if region != nil {
		args = append(args, "-a", fmt.Sprintf("%d,%d,%d,%d", region.Left, region.Top, region.Width, region.Height))
	}
	args = append(args, path)
	if err := c.run("scrot", args...); err != nil {
		return "", err
	}
	return path, nil
}

func (c *ExecController) MoveMouse(x, y int, durationSeconds float64, relative bool) error {
	sub := "mousemove"
	if relative {
		sub = "mousemove_relative"
	}
	return c.run("xdotool", sub, "--", strconv.Itoa(x), strconv.Itoa(y))
}

var buttonNumbers = map[string]string{
	"left": "1", "middle": "2", "right": "3",
	"左键": "1", "中键": "2", "右键": "3",
}

func (c *ExecController) ClickMouse(x, y *int, button string, clicks int) error {
	if x != nil && y != nil {
		if err := c.run("xdotool", "mousemove", "--", strconv.Itoa(*x), strconv.Itoa(*y)); err != nil {
			return err
		}
	}
	num, ok := buttonNumbers[button]
	if !ok {
		num = "1"
	}
	if clicks < 1 {
		clicks = 1
	}
	return c.run("xdotool", "click", "--repeat", strconv.Itoa(clicks), num)
}

func (c *ExecController) TypeText(text string) error {
	return c.run("xdotool", "type", "--", text)
}

func (c *ExecController) PressKey(key string) error {
	return c.run("xdotool", "key", keyName(key))
}

func (c *ExecController) Hotkey(keys ...string) error {
	if len(keys) == 0 {
		return fmt.Errorf("no keys given")
	}
	mapped := make([]string, len(keys))
	for i, k := range keys {
		mapped[i] = keyName(k)
	}
	return c.run("xdotool", "key", strings.Join(mapped, "+"))
}

var keyNames = map[string]string{
	"回车": "Return", "enter": "Return",
	"空格": "space", "space": "space",
	"退格": "BackSpace", "backspace": "BackSpace",
	"制表": "Tab", "tab": "Tab",
	"esc": "Escape", "escape": "Escape",
	"ctrl": "ctrl", "alt": "alt", "shift": "shift", "win": "super",
}

func keyName(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	if mapped, ok := keyNames[k]; ok {
		return mapped
	}
	return k
}
