// Package logging configures the process-wide slog handler for sharekit
// binaries. Components take a *slog.Logger explicitly; the handler installed
// here backs the logger handed to them at startup.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pwntr/tinter"

	"go.klb.dev/sharekit/internal/item"
)

// Format selects the log output format.
type Format string

const (
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat converts a string to a Format, returning FormatAuto for unknown values.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "tint", "human":
		return FormatText
	case "json":
		return FormatJSON
	default:
		return FormatAuto
	}
}

// ParseLevel converts a string to a slog.Level, defaulting to Info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// New builds a logger writing to w. Terminals get tinted text, everything
// else JSON, unless format forces one.
func New(w io.Writer, format Format, level slog.Level) *slog.Logger {
	useTint := format == FormatText || (format == FormatAuto && IsTTY(w))

	var h slog.Handler
	if useTint {
		h = tinter.NewHandler(w, &tinter.Options{
			Level:      level,
			TimeFormat: "15:04:05.000",
		})
	} else {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(h)
}

// Setup installs a stderr logger as the slog default and returns it. Call
// once after flag/viper parsing.
func Setup(format Format, level slog.Level) *slog.Logger {
	l := New(os.Stderr, format, level)
	slog.SetDefault(l)
	return l
}

// Items logs a batch at INFO (count and kinds) and each item at DEBUG (text
// preview up to 120 chars, or its location).
func Items(log *slog.Logger, event string, items []item.Item) {
	kinds := make([]string, len(items))
	for i, it := range items {
		kinds[i] = string(it.Kind())
	}
	log.Info(event, "items", len(items), "kinds", kinds)

	if !log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	for i, it := range items {
		switch it.Kind() {
		case item.KindText:
			preview := it.Text()
			if len(preview) > 120 {
				preview = preview[:120] + "…"
			}
			log.Debug("shared item", "index", i, "kind", it.Kind(), "preview", preview)
		case item.KindVideo:
			v := it.Video()
			log.Debug("shared item", "index", i, "kind", it.Kind(),
				"location", v.VideoURL, "preview", v.PreviewURL, "duration_ms", v.Duration)
		default:
			log.Debug("shared item", "index", i, "kind", it.Kind(), "location", it.Location())
		}
	}
}
