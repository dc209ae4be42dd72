package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/addy-assistant/addy/internal/intent"
)

func TestParseAmixerLevel(t *testing.T) {
	out := "Simple mixer control 'Master',0\n  Front Left: Playback 52428 [80%] [on]\n"
	assert.Equal(t, 80, parseAmixerLevel(out))
	assert.Equal(t, -1, parseAmixerLevel("no levels here"))
}

func TestSetVolumeClampsAndRuns(t *testing.T) {
	tool := NewSystemTool(zap.NewNop().Sugar(), nil)
	var gotArgs []string
	tool.run = func(ctx context.Context, name string, args ...string) (string, error) {
		assert.Equal(t, "amixer", name)
		gotArgs = args
		return "", nil
	}

	res := tool.Execute(context.Background(), "set_volume", intent.Entities{"level": "150"}, "")
	assert.Equal(t, "volume_set: 100", res.String())
	assert.Equal(t, []string{"set", "Master", "100%"}, gotArgs)
}

func TestSetVolumeMissingLevel(t *testing.T) {
	tool := NewSystemTool(zap.NewNop().Sugar(), nil)
	res := tool.Execute(context.Background(), "set_volume", intent.Entities{}, "调整音量")
	assert.Equal(t, intent.KindClarification, res.Kind)
}

func TestGetVolume(t *testing.T) {
	tool := NewSystemTool(zap.NewNop().Sugar(), nil)
	tool.run = func(ctx context.Context, name string, args ...string) (string, error) {
		return "Playback [35%] [on]", nil
	}
	res := tool.Execute(context.Background(), "get_volume", intent.Entities{}, "")
	assert.Equal(t, "volume: 35", res.String())

	tool.run = func(ctx context.Context, name string, args ...string) (string, error) {
		return "", errors.New("amixer missing")
	}
	res = tool.Execute(context.Background(), "get_volume", intent.Entities{}, "")
	assert.True(t, res.Failed())
}

func TestKillProcessMissingName(t *testing.T) {
	tool := NewSystemTool(zap.NewNop().Sugar(), nil)
	res := tool.Execute(context.Background(), "kill_process", intent.Entities{}, "结束进程")
	assert.Equal(t, intent.KindClarification, res.Kind)
}

func TestCheckWebsite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tool := NewSystemTool(zap.NewNop().Sugar(), nil)
	res := tool.Execute(context.Background(), "check_website", intent.Entities{"url": srv.URL}, "")
	assert.Equal(t, intent.KindOK, res.Kind)
	assert.Contains(t, res.Detail, fmt.Sprintf("%d", http.StatusOK))

	res = tool.Execute(context.Background(), "check_website",
		intent.Entities{"url": "http://127.0.0.1:1"}, "")
	assert.True(t, res.Failed())
}
