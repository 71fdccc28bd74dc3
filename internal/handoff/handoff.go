// Package handoff publishes a finished batch of shared items to the host
// process: it writes the encoded batch into the shared store under the host's
// group and wakes the host.
package handoff

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.klb.dev/sharekit/internal/item"
	"go.klb.dev/sharekit/internal/shareerr"
	"go.klb.dev/sharekit/internal/store"
	"go.klb.dev/sharekit/internal/wake"
)

// StoreKey is the key the pending batch is stored under. The store holds at
// most one pending batch per host.
const StoreKey = "sharedItems"

// HostIdentity derives the host identity from the extension's bundle
// identifier by cutting at its last dot, so com.acme.app.Share belongs to
// com.acme.app and com.acme. to com.acme.
func HostIdentity(bundleID string) (string, error) {
	bundleID = strings.TrimSpace(bundleID)
	i := strings.LastIndexByte(bundleID, '.')
	if i < 0 {
		return "", fmt.Errorf("%w: cannot derive host from %q", shareerr.ErrMissingHostIdentity, bundleID)
	}
	host := bundleID[:i]
	if strings.Trim(host, ".") == "" {
		return "", fmt.Errorf("%w: cannot derive host from %q", shareerr.ErrMissingHostIdentity, bundleID)
	}
	return host, nil
}

// Group returns the shared namespace of host.
func Group(host string) string { return "group." + host }

// Completer ends the extension's lifecycle.
type Completer interface {
	Complete(ctx context.Context)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context)

// Complete implements Completer.
func (f CompleterFunc) Complete(ctx context.Context) { f(ctx) }

// Publisher hands batches off to the host.
type Publisher struct {
	bundleID  string
	store     store.Store
	signaler  wake.Signaler
	completer Completer
	log       *slog.Logger
}

// New returns a Publisher for the extension identified by bundleID. A nil
// completer is allowed.
func New(bundleID string, s store.Store, sig wake.Signaler, c Completer, log *slog.Logger) *Publisher {
	if log == nil {
		log = slog.Default()
	}
	if c == nil {
		c = CompleterFunc(func(context.Context) {})
	}
	return &Publisher{bundleID: bundleID, store: s, signaler: sig, completer: c, log: log}
}

// Publish stores items for the host and wakes it. Failures are logged and end
// the handoff; the lifecycle is completed either way.
func (p *Publisher) Publish(ctx context.Context, items []item.Item) {
	defer p.completer.Complete(ctx)

	if err := p.publish(ctx, items); err != nil {
		p.log.Error("handoff failed", "code", shareerr.Code(err), "err", err)
	}
}

func (p *Publisher) publish(ctx context.Context, items []item.Item) error {
	host, err := HostIdentity(p.bundleID)
	if err != nil {
		return err
	}
	log := p.log.With("host", host)

	payload, err := item.EncodeList(items)
	if err != nil {
		return fmt.Errorf("%w: %w", shareerr.ErrSerializationFailed, err)
	}

	if err := p.store.Set(ctx, Group(host), StoreKey, payload); err != nil {
		return fmt.Errorf("%w: store: %w", shareerr.ErrPublishFailed, err)
	}
	log.Info("handoff stored", "items", len(items), "bytes", len(payload))

	uri := wake.URI(host)
	if err := p.signaler.Signal(ctx, uri); err != nil {
		return fmt.Errorf("%w: signal %s: %w", shareerr.ErrPublishFailed, uri, err)
	}
	log.Info("host signaled", "uri", uri)
	return nil
}
