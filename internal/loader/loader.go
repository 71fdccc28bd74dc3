// Package loader models the attachment descriptors handed to the share
// extension and the loader that resolves them into typed values.
//
// A Descriptor is opaque to the classifier apart from the identifiers it
// declares. Loading a descriptor for one of those identifiers yields a Value
// already discriminated into text or URL, so downstream code switches on the
// variant instead of inspecting an untyped payload.
package loader

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"slices"
	"strings"

	"go.klb.dev/sharekit/internal/uti"
)

// Descriptor is one attachment offered to the extension.
type Descriptor struct {
	// ID names the attachment in logs.
	ID string
	// Types lists the identifiers the attachment can be loaded as.
	Types []uti.Type
	// Source is the loader-specific handle: a path, a URI or inline text.
	Source string
}

// Conforms reports whether the descriptor can be loaded as t.
func (d Descriptor) Conforms(t uti.Type) bool {
	return slices.Contains(d.Types, t)
}

// Loader resolves a descriptor for one requested identifier. It is called
// at most once per (descriptor, identifier) pair.
type Loader interface {
	Load(ctx context.Context, d Descriptor, t uti.Type) (Value, error)
}

// ValueKind discriminates a loaded Value.
type ValueKind int

const (
	ValueText ValueKind = iota + 1
	ValueURL
)

// Value is the tagged result of a load, keyed by the identifier it was
// requested for.
type Value struct {
	Type uti.Type
	kind ValueKind
	text string
	url  *url.URL
}

// TextValue wraps a loaded string.
func TextValue(t uti.Type, s string) Value {
	return Value{Type: t, kind: ValueText, text: s}
}

// URLValue wraps a loaded location.
func URLValue(t uti.Type, u *url.URL) Value {
	return Value{Type: t, kind: ValueURL, url: u}
}

func (v Value) Kind() ValueKind { return v.kind }

// Text returns the string payload, if v holds one.
func (v Value) Text() (string, bool) {
	return v.text, v.kind == ValueText
}

// URL returns the location payload, if v holds one.
func (v Value) URL() (*url.URL, bool) {
	return v.url, v.kind == ValueURL && v.url != nil
}

// ErrNotConforming is returned when a descriptor is loaded for an identifier
// it does not declare.
var ErrNotConforming = errors.New("loader: descriptor does not conform")

// Local loads descriptors whose Source is a local path, a URI or inline
// text, as produced by Describe and FromClipboard.
type Local struct{}

// Load implements Loader.
func (Local) Load(ctx context.Context, d Descriptor, t uti.Type) (Value, error) {
	if err := ctx.Err(); err != nil {
		return Value{}, err
	}
	if !d.Conforms(t) {
		return Value{}, fmt.Errorf("%w: %s as %s", ErrNotConforming, d.ID, t)
	}
	if t == uti.Text {
		return TextValue(t, d.Source), nil
	}
	u, err := ParseLocation(d.Source)
	if err != nil {
		return Value{}, fmt.Errorf("load %s: %w", d.ID, err)
	}
	return URLValue(t, u), nil
}

// ParseLocation turns a URI or a filesystem path into a URL. Paths become
// absolute file:// URLs.
func ParseLocation(s string) (*url.URL, error) {
	if s == "" {
		return nil, errors.New("empty location")
	}
	if u, err := url.Parse(s); err == nil && len(u.Scheme) > 1 {
		return u, nil
	}
	abs, err := filepath.Abs(s)
	if err != nil {
		return nil, err
	}
	return &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}, nil
}

// isWebURL reports whether s looks like a remote URL rather than a path or
// free text.
func isWebURL(s string) bool {
	if strings.ContainsAny(s, " \t\n") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil || len(u.Scheme) < 2 {
		return false
	}
	return u.Host != "" || u.Opaque != ""
}
