// Package host is the consuming side of a handoff. A Receiver listens on the
// host's wake socket and, on every wake frame addressed to it, reads the
// pending batch from the shared store and hands it to a callback.
package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"go.klb.dev/sharekit/internal/crypto"
	"go.klb.dev/sharekit/internal/handoff"
	"go.klb.dev/sharekit/internal/item"
	"go.klb.dev/sharekit/internal/message"
	"go.klb.dev/sharekit/internal/store"
	"go.klb.dev/sharekit/internal/wake"
	"go.klb.dev/sharekit/internal/wire"
)

const readTimeout = 5 * time.Second

// Handler receives each fetched batch.
type Handler func(ctx context.Context, items []item.Item)

// Receiver fetches batches for one host identity.
type Receiver struct {
	host  string
	store store.Store
	key   *crypto.Key
	log   *slog.Logger

	mu sync.Mutex // serialises fetch+handle
}

// New returns a Receiver for host reading from s. key unseals wake frames
// and may be nil.
func New(host string, s store.Store, key *crypto.Key, log *slog.Logger) *Receiver {
	if log == nil {
		log = slog.Default()
	}
	return &Receiver{host: host, store: s, key: key, log: log.With("host", host)}
}

// Fetch reads and decodes the pending batch.
func (r *Receiver) Fetch(ctx context.Context) ([]item.Item, error) {
	b, err := r.store.Get(ctx, handoff.Group(r.host), handoff.StoreKey)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", handoff.StoreKey, err)
	}
	items, err := item.DecodeList(b)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", handoff.StoreKey, err)
	}
	return items, nil
}

// Serve accepts wake connections on ln until ctx is cancelled or ln is
// closed, calling h once per accepted wake.
func (r *Receiver) Serve(ctx context.Context, ln net.Listener, h Handler) error {
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return ctx.Err()
			}
			return fmt.Errorf("accept: %w", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.handleConn(ctx, conn, h)
		}()
	}
}

func (r *Receiver) handleConn(ctx context.Context, conn net.Conn, h Handler) {
	wc := wire.New(conn, r.key)
	defer wc.Close()

	wc.SetReadDeadline(readTimeout)
	msg, err := wc.ReadMsg()
	if err != nil {
		r.log.Warn("wake: unreadable frame", "err", err)
		return
	}
	wc.SetReadDeadline(0)

	if msg.Type != message.TypeWake {
		r.log.Warn("wake: unexpected frame", "type", msg.Type, "source", msg.Source)
		_ = wc.WriteMsg(message.Errorf("unexpected %s", msg.Type))
		return
	}
	target, err := wake.ParseURI(msg.URI)
	if err != nil || target != r.host {
		r.log.Warn("wake: not for this host", "uri", msg.URI, "source", msg.Source)
		_ = wc.WriteMsg(message.Errorf("not %s", wake.URI(r.host)))
		return
	}
	r.log.Debug("wake received", "source", msg.Source, "sent_at", msg.SentAt)

	r.mu.Lock()
	defer r.mu.Unlock()
	items, err := r.Fetch(ctx)
	if err != nil {
		r.log.Error("wake: fetch failed", "err", err)
		return
	}
	h(ctx, items)
}
