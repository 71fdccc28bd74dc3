// Package uti names the content type identifiers an attachment can declare
// and derives them for local inputs.
//
// Identifiers follow the uniform type identifier spelling used by the share
// sheet ("public.image", "public.movie", ...). A file on disk conforms to the
// identifier of its detected content plus public.file-url and public.url, the
// same way a file provider does.
package uti

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Type is a content type identifier.
type Type string

const (
	Image   Type = "public.image"
	Movie   Type = "public.movie"
	Text    Type = "public.text"
	URL     Type = "public.url"
	FileURL Type = "public.file-url"
	Data    Type = "public.data"
)

// ForMIME maps a MIME type to the content identifier it conforms to.
func ForMIME(mime string) Type {
	mt, _, _ := strings.Cut(mime, ";")
	mt = strings.ToLower(strings.TrimSpace(mt))
	switch {
	case strings.HasPrefix(mt, "image/"):
		return Image
	case strings.HasPrefix(mt, "video/"):
		return Movie
	case strings.HasPrefix(mt, "text/"):
		return Text
	default:
		return Data
	}
}

// DetectFile reads the head of path and returns its MIME type and the
// identifiers a file with that content conforms to, most specific first.
func DetectFile(path string) (string, []Type, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("detect %s: %w", path, err)
	}
	mime := mt.String()
	return mime, []Type{ForMIME(mime), FileURL, URL}, nil
}
