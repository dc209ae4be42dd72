package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/addy-assistant/addy/internal/intent"
	"github.com/addy-assistant/addy/internal/speech"
)

const maxReadPreview = 2048

// FileTool performs filesystem operations through an afero.Fs so tests run
// against an in-memory filesystem.
type FileTool struct {
	Base
	fs      afero.Fs
	baseDir string
	client  *http.Client
}

func NewFileTool(fs afero.Fs, baseDir string, log *zap.SugaredLogger, speak speech.Sink) *FileTool {
	if baseDir == "" {
		baseDir, _ = os.UserHomeDir()
	}
	return &FileTool{
		Base:    NewBase(log, speak),
		fs:      fs,
		baseDir: baseDir,
		client:  &http.Client{},
	}
}

func (t *FileTool) Name() string { return "file" }

func (t *FileTool) Description() string {
	return "Creates, reads, copies, moves, deletes, lists, searches and downloads files"
}

func (t *FileTool) SupportedIntents() []string {
	return []string{
		"create_file", "delete_file", "copy_file", "move_file",
		"read_file", "list_files", "search_files", "download_file",
	}
}

func (t *FileTool) Execute(ctx context.Context, intentName string, entities intent.Entities, originalText string) intent.Result {
	switch intentName {
	case "create_file":
		return t.createFile(entities)
	case "delete_file":
		return t.deleteFile(entities)
	case "copy_file":
		return t.copyFile(entities)
	case "move_file":
		return t.moveFile(entities)
	case "read_file":
		return t.readFile(entities)
	case "list_files":
		return t.listFiles(entities)
	case "search_files":
		return t.searchFiles(entities)
	case "download_file":
		return t.downloadFile(ctx, entities)
	}
	return intent.UnsupportedIntent(intentName)
}

// resolve anchors relative paths under the configured base directory.
func (t *FileTool) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(t.baseDir, path)
}

func (t *FileTool) createFile(entities intent.Entities) intent.Result {
	filename, ok := entities.String("filename")
	if !ok || filename == "" {
		t.Say("您想创建什么文件？")
		return intent.Clarify("filename_missing")
	}
	dir, _ := entities.String("path")
	target := t.resolve(filepath.Join(dir, filename))

	if err := t.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return intent.Errorf("create_file_failed: %v", err)
	}
	f, err := t.fs.Create(target)
	if err != nil {
		return intent.Errorf("create_file_failed: %v", err)
	}
	f.Close()
	t.Say(fmt.Sprintf("文件%s已创建。", filename))
	return intent.Okf("file_created: %s", target)
}

func (t *FileTool) deleteFile(entities intent.Entities) intent.Result {
	// the rule table emits the target as path, LLM tool calls may say filename
	path, ok := entities.String("path")
	if !ok || path == "" {
		path, _ = entities.String("filename")
	}
	if path == "" {
		t.Say("您想删除哪个文件？")
		return intent.Clarify("filename_missing")
	}
	target := t.resolve(path)
	if exists, _ := afero.Exists(t.fs, target); !exists {
		t.Say("找不到这个文件。")
		return intent.Errorf("file_not_found: %s", target).Spoken()
	}
	if err := t.fs.Remove(target); err != nil {
		return intent.Errorf("delete_file_failed: %v", err)
	}
	t.Say("文件已删除。")
	return intent.Okf("file_deleted: %s", target)
}

func (t *FileTool) copyFile(entities intent.Entities) intent.Result {
	source, okS := entities.String("source")
	destination, okD := entities.String("destination")
	if !okS || !okD || source == "" || destination == "" {
		t.Say("请告诉我源文件和目标位置。")
		return intent.Clarify("source_or_destination_missing")
	}
	src, dst := t.resolve(source), t.resolve(destination)

	in, err := t.fs.Open(src)
	if err != nil {
		return intent.Errorf("copy_file_failed: %v", err)
	}
	defer in.Close()
	out, err := t.fs.Create(dst)
	if err != nil {
		return intent.Errorf("copy_file_failed: %v", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return intent.Errorf("copy_file_failed: %v", err)
	}
	t.Say("文件已复制。")
	return intent.Okf("file_copied: %s -> %s", src, dst)
}

func (t *FileTool) moveFile(entities intent.Entities) intent.Result {
	source, okS := entities.String("source")
	destination, okD := entities.String("destination")
	if !okS || !okD || source == "" || destination == "" {
		t.Say("请告诉我源文件和目标位置。")
		return intent.Clarify("source_or_destination_missing")
	}
	src, dst := t.resolve(source), t.resolve(destination)
	if err := t.fs.Rename(src, dst); err != nil {
		return intent.Errorf("move_file_failed: %v", err)
	}
	t.Say("文件已移动。")
	return intent.Okf("file_moved: %s -> %s", src, dst)
}

func (t *FileTool) readFile(entities intent.Entities) intent.Result {
	path, ok := entities.String("path")
	if !ok || path == "" {
		t.Say("您想读取哪个文件？")
		return intent.Clarify("path_missing")
	}
	target := t.resolve(path)
	data, err := afero.ReadFile(t.fs, target)
	if err != nil {
		return intent.Errorf("read_file_failed: %v", err)
	}
	content := string(data)
	if len(content) > maxReadPreview {
		content = content[:maxReadPreview] + "..."
	}
	t.Say(fmt.Sprintf("文件内容共%d个字节。", len(data)))
	return intent.Okf("file_content: %s", content)
}

func (t *FileTool) listFiles(entities intent.Entities) intent.Result {
	dir, _ := entities.String("directory")
	target := t.resolve(dir)
	if target == "" {
		target = t.baseDir
	}
	infos, err := afero.ReadDir(t.fs, target)
	if err != nil {
		return intent.Errorf("list_files_failed: %v", err)
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name())
	}
	sort.Strings(names)
	t.Say(fmt.Sprintf("目录下有%d个文件。", len(names)))
	return intent.Okf("files: %s", strings.Join(names, ", "))
}

func (t *FileTool) searchFiles(entities intent.Entities) intent.Result {
	pattern, ok := entities.String("pattern")
	if !ok || pattern == "" {
		t.Say("您想搜索什么文件？")
		return intent.Clarify("pattern_missing")
	}
	dir, _ := entities.String("directory")
	root := t.resolve(dir)
	if root == "" {
		root = t.baseDir
	}

	var matches []string
	err := afero.Walk(t.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if strings.Contains(strings.ToLower(info.Name()), strings.ToLower(pattern)) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return intent.Errorf("search_files_failed: %v", err)
	}
	t.Say(fmt.Sprintf("找到%d个匹配的文件。", len(matches)))
	return intent.Okf("matches: %s", strings.Join(matches, ", "))
}

func (t *FileTool) downloadFile(ctx context.Context, entities intent.Entities) intent.Result {
	rawURL, ok := entities.String("url")
	if !ok || rawURL == "" {
		t.Say("请告诉我下载地址。")
		return intent.Clarify("url_missing")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = "https://" + rawURL
	}
	dest, _ := entities.String("path")
	if dest == "" {
		dest = filepath.Base(rawURL)
	}
	target := t.resolve(dest)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return intent.Errorf("download_file_failed: %v", err)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return intent.Errorf("download_file_failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return intent.Errorf("download_file_failed: status %d", resp.StatusCode)
	}

	out, err := t.fs.Create(target)
	if err != nil {
		return intent.Errorf("download_file_failed: %v", err)
	}
	defer out.Close()
	n, err := io.Copy(out, resp.Body)
	if err != nil {
		return intent.Errorf("download_file_failed: %v", err)
	}
	t.Say("下载完成。")
	return intent.Okf("file_downloaded: %s (%d bytes)", target, n)
}
