package clip

import (
	"log/slog"

	"golang.design/x/clipboard"
)

type systemBackend struct{}

// New returns the system clipboard backend, or a headless no-op backend if
// the display environment is unavailable (e.g. a headless server without X11
// or Wayland, or a binary built without cgo).
func New() Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return headlessBackend{}
	}
	return systemBackend{}
}

func (systemBackend) Name() string { return "system clipboard" }

func (systemBackend) Read() ([]Item, error) {
	var items []Item
	if text := clipboard.Read(clipboard.FmtText); len(text) > 0 {
		items = append(items, Item{MIME: "text/plain", Data: text})
	}
	if img := clipboard.Read(clipboard.FmtImage); len(img) > 0 {
		items = append(items, Item{MIME: "image/png", Data: img})
	}
	return items, nil
}
