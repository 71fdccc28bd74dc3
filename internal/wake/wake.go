// Package wake delivers the "new data" notification to a host process.
//
// The notification is a URI of the form ShareMedia-<host>://newData. Delivery
// is fire-and-forget: a Signaler reports whether the notification left this
// process, never whether the host acted on it.
package wake

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.klb.dev/sharekit/internal/crypto"
	"go.klb.dev/sharekit/internal/ipc"
	"go.klb.dev/sharekit/internal/message"
	"go.klb.dev/sharekit/internal/wire"
)

const (
	schemePrefix = "ShareMedia-"
	newDataPath  = "newData"

	dialTimeout = 2 * time.Second
)

// Signaler delivers a wake URI.
type Signaler interface {
	Signal(ctx context.Context, uri string) error
}

// SignalerFunc adapts a function to Signaler.
type SignalerFunc func(ctx context.Context, uri string) error

// Signal implements Signaler.
func (f SignalerFunc) Signal(ctx context.Context, uri string) error { return f(ctx, uri) }

// URI returns the wake URI for host.
func URI(host string) string {
	return schemePrefix + host + "://" + newDataPath
}

// ParseURI extracts the host identity from a wake URI. The scheme is
// matched case-sensitively because the host identity is embedded in it.
func ParseURI(uri string) (string, error) {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return "", fmt.Errorf("wake: %q is not a URI", uri)
	}
	host, ok := strings.CutPrefix(scheme, schemePrefix)
	if !ok || host == "" {
		return "", fmt.Errorf("wake: unexpected scheme %q", scheme)
	}
	if rest != newDataPath {
		return "", fmt.Errorf("wake: unexpected target %q", rest)
	}
	return host, nil
}

// IPC signals a host over its local socket. The frame is written and the
// connection closed without waiting for a reply.
type IPC struct {
	// Source names the sender in the frame.
	Source string
	// Key seals the frame when non-nil.
	Key *crypto.Key
	Log *slog.Logger
}

// Signal implements Signaler.
func (s *IPC) Signal(ctx context.Context, uri string) error {
	host, err := ParseURI(uri)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	c, err := ipc.Dial(ctx, host)
	if err != nil {
		return fmt.Errorf("wake %s: %w", host, err)
	}
	conn := wire.New(c, s.Key)
	defer conn.Close()

	if err := conn.WriteMsg(message.Wake(s.Source, uri)); err != nil {
		return fmt.Errorf("wake %s: %w", host, err)
	}
	s.logger().Debug("wake sent", "host", host, "uri", uri)
	return nil
}

func (s *IPC) logger() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}
