package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"go.klb.dev/sharekit/internal/clip"
	"go.klb.dev/sharekit/internal/item"
	"go.klb.dev/sharekit/internal/uti"
)

// Describe builds a descriptor for one command-line argument. Existing files
// declare their detected content type plus file-url and url and carry a
// file:// source, remote URLs declare url, anything else is text.
func Describe(arg string) (Descriptor, error) {
	if fi, err := os.Stat(arg); err == nil {
		if fi.IsDir() {
			return Descriptor{}, fmt.Errorf("%s is a directory", arg)
		}
		_, types, err := uti.DetectFile(arg)
		if err != nil {
			return Descriptor{}, err
		}
		return fileDescriptor(arg, types)
	}
	if isWebURL(arg) {
		return Descriptor{ID: arg, Types: []uti.Type{uti.URL}, Source: arg}, nil
	}
	return DescribeText(arg), nil
}

// DescribeText builds a plain-text descriptor.
func DescribeText(s string) Descriptor {
	id := s
	if len(id) > 32 {
		id = id[:32] + "…"
	}
	return Descriptor{ID: id, Types: []uti.Type{uti.Text}, Source: s}
}

// FromClipboard turns the current clipboard contents into descriptors. Image
// data is spilled to dir so it can be loaded as a file like any other
// attachment.
func FromClipboard(b clip.Backend, dir string) ([]Descriptor, error) {
	items, err := b.Read()
	if err != nil {
		return nil, fmt.Errorf("clipboard read: %w", err)
	}
	var out []Descriptor
	for _, it := range items {
		switch uti.ForMIME(it.MIME) {
		case uti.Text:
			out = append(out, DescribeText(string(it.Data)))
		case uti.Image:
			path := filepath.Join(dir, "clipboard-"+uuid.NewString()+".png")
			if err := os.WriteFile(path, it.Data, 0o600); err != nil {
				return nil, fmt.Errorf("spill clipboard image: %w", err)
			}
			d, err := fileDescriptor(path, []uti.Type{uti.Image, uti.FileURL, uti.URL})
			if err != nil {
				return nil, err
			}
			out = append(out, d)
		}
	}
	return out, nil
}

// fileDescriptor describes a local file by its file:// URL, so a name that
// looks like a URI scheme still loads as a path.
func fileDescriptor(path string, types []uti.Type) (Descriptor, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Descriptor{}, err
	}
	return Descriptor{ID: filepath.Base(abs), Types: types, Source: item.FileURL(abs)}, nil
}
