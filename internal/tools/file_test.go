package tools

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/addy-assistant/addy/internal/intent"
	"github.com/addy-assistant/addy/internal/nlp"
)

func newMemFileTool(t *testing.T) (*FileTool, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	return NewFileTool(fs, "/home/addy", zap.NewNop().Sugar(), nil), fs
}

func TestFileCreateAndRead(t *testing.T) {
	tool, fs := newMemFileTool(t)
	ctx := context.Background()

	res := tool.Execute(ctx, "create_file", intent.Entities{"filename": "notes.txt"}, "")
	assert.Equal(t, "file_created: /home/addy/notes.txt", res.String())

	exists, err := afero.Exists(fs, "/home/addy/notes.txt")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, afero.WriteFile(fs, "/home/addy/notes.txt", []byte("hello"), 0o644))
	res = tool.Execute(ctx, "read_file", intent.Entities{"path": "notes.txt"}, "")
	assert.Equal(t, intent.KindOK, res.Kind)
	assert.Contains(t, res.Detail, "hello")
}

func TestFileDelete(t *testing.T) {
	tool, fs := newMemFileTool(t)
	ctx := context.Background()
	require.NoError(t, afero.WriteFile(fs, "/home/addy/old.log", []byte("x"), 0o644))

	res := tool.Execute(ctx, "delete_file", intent.Entities{"filename": "old.log"}, "")
	assert.Equal(t, intent.KindOK, res.Kind)
	exists, _ := afero.Exists(fs, "/home/addy/old.log")
	assert.False(t, exists)

	res = tool.Execute(ctx, "delete_file", intent.Entities{"filename": "ghost.log"}, "")
	assert.True(t, res.Failed())
}

func TestFileDeleteFromRuleMatch(t *testing.T) {
	tool, fs := newMemFileTool(t)
	ctx := context.Background()
	require.NoError(t, afero.WriteFile(fs, "/home/addy/old.log", []byte("x"), 0o644))

	rec := nlp.NewRuleEngine(zap.NewNop().Sugar()).Match("删除文件 old.log")
	require.Equal(t, "delete_file", rec.Intent)

	res := tool.Execute(ctx, rec.Intent, rec.Entities, rec.OriginalText)
	assert.Equal(t, intent.KindOK, res.Kind)
	exists, _ := afero.Exists(fs, "/home/addy/old.log")
	assert.False(t, exists)
}

func TestFileCopyAndMove(t *testing.T) {
	tool, fs := newMemFileTool(t)
	ctx := context.Background()
	require.NoError(t, afero.WriteFile(fs, "/home/addy/a.txt", []byte("data"), 0o644))

	res := tool.Execute(ctx, "copy_file",
		intent.Entities{"source": "a.txt", "destination": "b.txt"}, "")
	assert.Equal(t, intent.KindOK, res.Kind)
	content, err := afero.ReadFile(fs, "/home/addy/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))

	res = tool.Execute(ctx, "move_file",
		intent.Entities{"source": "b.txt", "destination": "c.txt"}, "")
	assert.Equal(t, intent.KindOK, res.Kind)
	exists, _ := afero.Exists(fs, "/home/addy/b.txt")
	assert.False(t, exists)
}

func TestFileListAndSearch(t *testing.T) {
	tool, fs := newMemFileTool(t)
	ctx := context.Background()
	require.NoError(t, afero.WriteFile(fs, "/home/addy/report_2026.txt", []byte("x"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/home/addy/docs/report_old.txt", []byte("x"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/home/addy/music.mp3", []byte("x"), 0o644))

	res := tool.Execute(ctx, "list_files", intent.Entities{}, "")
	assert.Equal(t, intent.KindOK, res.Kind)
	assert.Contains(t, res.Detail, "music.mp3")

	res = tool.Execute(ctx, "search_files", intent.Entities{"pattern": "report"}, "")
	assert.Equal(t, intent.KindOK, res.Kind)
	assert.Contains(t, res.Detail, "report_2026.txt")
	assert.Contains(t, res.Detail, "report_old.txt")
	assert.NotContains(t, res.Detail, "music.mp3")
}

func TestFileMissingEntitiesClarify(t *testing.T) {
	tool, _ := newMemFileTool(t)
	ctx := context.Background()

	res := tool.Execute(ctx, "create_file", intent.Entities{}, "创建文件")
	assert.Equal(t, intent.KindClarification, res.Kind)

	res = tool.Execute(ctx, "copy_file", intent.Entities{"source": "a"}, "")
	assert.Equal(t, intent.KindClarification, res.Kind)
}
