// Package clip reads the system clipboard as a share source.
//
//	clip_system.go:   golang.design/x/clipboard (X11/Wayland, macOS, Windows)
//	clip_headless.go: no-op fallback when no display is available
package clip

// Item is one clipboard representation.
type Item struct {
	MIME string
	Data []byte
}

// Backend is the interface that clipboard implementations satisfy.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// Read returns the current clipboard contents as a slice of typed items.
	// Returns nil, nil if the clipboard is empty or contains only unsupported types.
	Read() ([]Item, error)
}
