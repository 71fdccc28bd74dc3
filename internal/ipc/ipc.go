// Package ipc locates and opens the local socket a running host listens on
// for wake frames. Each host identity gets its own socket so several hosts
// can run side by side.
package ipc

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoHost is returned by Dial when no host is listening.
var ErrNoHost = errors.New("ipc: host is not running")

// SocketPath returns the socket path for host.
//
//   - $SHAREKIT_SOCKET_DIR when set
//   - otherwise $XDG_RUNTIME_DIR (Linux)
//   - otherwise os.TempDir()
func SocketPath(host string) string {
	return filepath.Join(socketDir(), "sharekit-"+sanitize(host)+".sock")
}

func socketDir() string {
	if dir := os.Getenv("SHAREKIT_SOCKET_DIR"); dir != "" {
		return dir
	}
	return defaultDir()
}

func sanitize(host string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, host)
}

// IsRunning reports whether a host appears to be listening for host. It
// does a cheap dial-and-close; no data is exchanged.
func IsRunning(host string) bool {
	c, err := dialIPC(context.Background(), SocketPath(host))
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates a listener on the socket for host, removing any stale
// socket file first.
func Listen(host string) (net.Listener, error) {
	path := SocketPath(host)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	// Remove stale socket from a previous (crashed) run.
	_ = os.Remove(path)
	return listenIPC(path)
}

// Dial connects to the host's socket.
func Dial(ctx context.Context, host string) (net.Conn, error) {
	c, err := dialIPC(ctx, SocketPath(host))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || isRefused(err) {
			return nil, errors.Join(ErrNoHost, err)
		}
		return nil, err
	}
	return c, nil
}
