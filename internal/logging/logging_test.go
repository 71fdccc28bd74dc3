package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/sharekit/internal/item"
)

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatText, ParseFormat("tint"))
	assert.Equal(t, FormatText, ParseFormat(" Human "))
	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatAuto, ParseFormat(""))
	assert.Equal(t, FormatAuto, ParseFormat("xml"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("loud"))
}

func TestNew(t *testing.T) {
	t.Run("Should write JSON to non-terminals in auto mode", func(t *testing.T) {
		var buf bytes.Buffer
		New(&buf, FormatAuto, slog.LevelInfo).Info("hello", "k", "v")
		assert.True(t, strings.HasPrefix(buf.String(), "{"))
		assert.Contains(t, buf.String(), `"k":"v"`)
	})

	t.Run("Should honour a forced text format", func(t *testing.T) {
		var buf bytes.Buffer
		New(&buf, FormatText, slog.LevelInfo).Info("hello")
		assert.Contains(t, buf.String(), "hello")
		assert.False(t, strings.HasPrefix(buf.String(), "{"))
	})

	t.Run("Should drop records below the level", func(t *testing.T) {
		var buf bytes.Buffer
		New(&buf, FormatJSON, slog.LevelWarn).Info("quiet")
		assert.Empty(t, buf.String())
	})

	t.Run("Should not treat a buffer as a terminal", func(t *testing.T) {
		assert.False(t, IsTTY(&bytes.Buffer{}))
	})
}

func TestItems(t *testing.T) {
	items := []item.Item{
		item.Text(strings.Repeat("x", 200)),
		item.Image("file:///c/p.png"),
		item.Video(item.VideoInfo{VideoURL: "file:///c/v.mov", PreviewURL: "file:///c/p.png", Duration: 1200}),
	}

	t.Run("Should summarise at info", func(t *testing.T) {
		var buf bytes.Buffer
		Items(New(&buf, FormatJSON, slog.LevelInfo), "handoff", items)
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 1)
		assert.Contains(t, lines[0], `"kinds":["text","image","video"]`)
	})

	t.Run("Should detail each item at debug", func(t *testing.T) {
		var buf bytes.Buffer
		Items(New(&buf, FormatJSON, slog.LevelDebug), "handoff", items)
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 4)
		assert.Contains(t, lines[1], "…")
		assert.Contains(t, lines[3], `"duration_ms":1200`)
	})
}
