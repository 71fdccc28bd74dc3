// Package store implements the shared key-value store the handoff payload
// is published to. Keys live in a namespace scoped to the host's group
// identity; each key holds one value and the last write wins.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.klb.dev/sharekit/internal/crypto"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("store: not found")

// Store is the shared key-value store.
type Store interface {
	Set(ctx context.Context, namespace, key string, value []byte) error
	Get(ctx context.Context, namespace, key string) ([]byte, error)
}

// Sealed wraps a Store, sealing values on Set and opening them on Get.
type Sealed struct {
	inner Store
	key   *crypto.Key
}

// Seal returns s sealed with key, or s itself when key is nil.
func Seal(s Store, key *crypto.Key) Store {
	if key == nil {
		return s
	}
	return &Sealed{inner: s, key: key}
}

// Set implements Store.
func (s *Sealed) Set(ctx context.Context, namespace, key string, value []byte) error {
	sealed, err := crypto.Seal(value, s.key)
	if err != nil {
		return fmt.Errorf("store: seal: %w", err)
	}
	return s.inner.Set(ctx, namespace, key, sealed)
}

// Get implements Store.
func (s *Sealed) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	sealed, err := s.inner.Get(ctx, namespace, key)
	if err != nil {
		return nil, err
	}
	return crypto.Open(sealed, s.key)
}
