// Package crypto seals handoff payloads with a key shared by the extension
// and the host.
//
// A 32-byte symmetric key is derived from the shared token using HKDF-SHA256.
// Sealed data is NaCl secretbox output with a random 24-byte nonce in front:
//
//	[ 24-byte nonce ][ ciphertext ]
//
// An empty token means no sealing; callers then pass a nil key around.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	KeySize   = 32
	nonceSize = 24
)

var hkdfInfo = []byte("sharekit-handoff-v1")

// ErrOpen is returned when sealed data fails authentication.
var ErrOpen = errors.New("crypto: cannot open sealed data (wrong token?)")

// Key is a derived secretbox key.
type Key = [KeySize]byte

// DeriveKey derives the sealing key for token. It returns nil, nil for an
// empty token.
func DeriveKey(token string) (*Key, error) {
	if token == "" {
		return nil, nil
	}
	h := hkdf.New(sha256.New, []byte(token), nil, hkdfInfo)
	var key Key
	if _, err := io.ReadFull(h, key[:]); err != nil {
		return nil, fmt.Errorf("key derivation: %w", err)
	}
	return &key, nil
}

// Seal encrypts plaintext with key, prepending a random nonce.
func Seal(plaintext []byte, key *Key) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("nonce generation: %w", err)
	}
	return secretbox.Seal(nonce[:], plaintext, &nonce, key), nil
}

// Open decrypts data produced by Seal.
func Open(sealed []byte, key *Key) ([]byte, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return nil, fmt.Errorf("%w: too short", ErrOpen)
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, key)
	if !ok {
		return nil, ErrOpen
	}
	return plain, nil
}
