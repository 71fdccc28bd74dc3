// Package normalize converts loaded attachment values into shared items,
// materialising file-backed content into the shared container.
package normalize

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"go.klb.dev/sharekit/internal/container"
	"go.klb.dev/sharekit/internal/item"
	"go.klb.dev/sharekit/internal/loader"
	"go.klb.dev/sharekit/internal/shareerr"
)

// Thumbnailer supplies video metadata and previews.
type Thumbnailer interface {
	DurationMillis(ctx context.Context, path string) (float64, error)
	Derive(ctx context.Context, path string) (string, error)
}

// Normalizer turns loader values into items. One Normalizer serves one
// handoff: a name copied twice within it gets a numeric suffix, so every
// item of a batch keeps its own file.
type Normalizer struct {
	container container.Container
	thumbs    Thumbnailer
	log       *slog.Logger
	used      map[string]struct{}
}

// New returns a Normalizer copying into c and deriving previews with thumbs.
func New(c container.Container, thumbs Thumbnailer, log *slog.Logger) *Normalizer {
	if log == nil {
		log = slog.Default()
	}
	return &Normalizer{container: c, thumbs: thumbs, log: log, used: map[string]struct{}{}}
}

// Normalize converts v into an item of the given kind.
//
// Text requires a string value. Every other kind requires a location. A
// location that is not file-backed becomes a url item without any copy. A
// file-backed location is copied into the container whichever kind matched,
// and the item is tagged with kind.
func (n *Normalizer) Normalize(ctx context.Context, v loader.Value, kind item.Kind) (item.Item, error) {
	if kind == item.KindText {
		s, ok := v.Text()
		if !ok {
			return item.Item{}, mismatch(v, kind)
		}
		return item.Text(s), nil
	}
	if !kind.Valid() {
		return item.Item{}, fmt.Errorf("%w: unknown kind %q", shareerr.ErrTypeMismatch, kind)
	}

	u, ok := v.URL()
	if !ok {
		return item.Item{}, mismatch(v, kind)
	}
	if u.Scheme != "file" {
		return item.URL(u.String()), nil
	}

	dst, err := n.materialize(u)
	if err != nil {
		return item.Item{}, err
	}
	loc := item.FileURL(dst)

	switch kind {
	case item.KindURL:
		return item.URL(loc), nil
	case item.KindFile:
		return item.File(loc), nil
	case item.KindImage:
		return item.Image(loc), nil
	default:
		return n.video(ctx, dst, loc)
	}
}

func (n *Normalizer) video(ctx context.Context, dst, loc string) (item.Item, error) {
	if n.thumbs == nil {
		return item.Item{}, fmt.Errorf("%w: no thumbnailer configured", shareerr.ErrThumbnailFailed)
	}
	ms, err := n.thumbs.DurationMillis(ctx, dst)
	if err != nil {
		return item.Item{}, err
	}
	preview, err := n.thumbs.Derive(ctx, dst)
	if err != nil {
		return item.Item{}, err
	}
	return item.Video(item.VideoInfo{
		VideoURL:   loc,
		PreviewURL: item.FileURL(preview),
		Duration:   ms,
	}), nil
}

func (n *Normalizer) materialize(u *url.URL) (string, error) {
	src, ok := item.PathOf(u.String())
	if !ok {
		return "", fmt.Errorf("%w: bad file location %q", shareerr.ErrCopyFailed, u.String())
	}
	name := path.Base(u.Path)
	if name == "/" || name == "." {
		name = ""
	}
	dst, err := n.container.Copy(src, n.reserve(name))
	if err != nil {
		return "", fmt.Errorf("%w: %w", shareerr.ErrCopyFailed, err)
	}
	n.log.Debug("attachment copied", "src", src, "dst", dst)
	return dst, nil
}

// reserve returns name, or name with a -N suffix before its extension when
// an earlier item of this handoff already took it.
func (n *Normalizer) reserve(name string) string {
	if name == "" {
		return ""
	}
	candidate := name
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 2; ; i++ {
		if _, taken := n.used[candidate]; !taken {
			n.used[candidate] = struct{}{}
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d%s", stem, i, ext)
	}
}

func mismatch(v loader.Value, kind item.Kind) error {
	return fmt.Errorf("%w: %s value loaded as %s cannot be a %s item",
		shareerr.ErrTypeMismatch, valueShape(v), v.Type, kind)
}

func valueShape(v loader.Value) string {
	switch v.Kind() {
	case loader.ValueText:
		return "text"
	case loader.ValueURL:
		return "location"
	default:
		return "empty"
	}
}
