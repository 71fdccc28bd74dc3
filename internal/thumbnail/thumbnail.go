// Package thumbnail derives still previews for shared videos.
//
// One frame is taken at a fixed offset into the video rather than the first
// frame, which is often black. The frame is scaled to fit MaxSide×MaxSide,
// encoded as PNG and written into the shared container under a fresh name.
package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"go.klb.dev/sharekit/internal/shareerr"
)

const (
	// MaxSide bounds both dimensions of a preview.
	MaxSide = 360
	// SeekOffset is where the preview frame is taken. Videos shorter than
	// this use their midpoint.
	SeekOffset = time.Second
)

// Media reads video metadata and frames.
type Media interface {
	Duration(ctx context.Context, path string) (time.Duration, error)
	Frame(ctx context.Context, path string, at time.Duration) (image.Image, error)
}

// Writer stores an encoded preview and returns its path.
type Writer interface {
	WriteFile(name string, r io.Reader) (string, error)
}

// Deriver produces previews and durations for videos.
type Deriver struct {
	media Media
	out   Writer
	log   *slog.Logger
}

// New returns a Deriver reading with media and writing previews to out.
func New(media Media, out Writer, log *slog.Logger) *Deriver {
	if log == nil {
		log = slog.Default()
	}
	return &Deriver{media: media, out: out, log: log}
}

// DurationMillis returns the video duration in whole milliseconds.
func (d *Deriver) DurationMillis(ctx context.Context, path string) (float64, error) {
	dur, err := d.media.Duration(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("%w: duration: %w", shareerr.ErrThumbnailFailed, err)
	}
	return Millis(dur), nil
}

// Derive extracts a preview frame from the video at path and returns the
// path of the PNG written for it.
func (d *Deriver) Derive(ctx context.Context, path string) (string, error) {
	dur, err := d.media.Duration(ctx, path)
	if err != nil {
		return "", fmt.Errorf("%w: duration: %w", shareerr.ErrThumbnailFailed, err)
	}
	if dur <= 0 {
		return "", fmt.Errorf("%w: zero-length media", shareerr.ErrThumbnailFailed)
	}
	at := SeekOffset
	if at >= dur {
		at = dur / 2
	}
	frame, err := d.media.Frame(ctx, path, at)
	if err != nil {
		return "", fmt.Errorf("%w: frame at %s: %w", shareerr.ErrThumbnailFailed, at, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, Fit(frame, MaxSide, MaxSide)); err != nil {
		return "", fmt.Errorf("%w: encode: %w", shareerr.ErrThumbnailFailed, err)
	}
	preview, err := d.out.WriteFile(uuid.NewString()+".png", &buf)
	if err != nil {
		return "", fmt.Errorf("%w: %w", shareerr.ErrThumbnailFailed, err)
	}
	d.log.Debug("thumbnail derived", "video", path, "at", at, "preview", preview)
	return preview, nil
}

// Fit scales img down to fit within maxW×maxH, preserving aspect ratio.
// Images that already fit are returned unchanged.
func Fit(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxW && h <= maxH {
		return img
	}
	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := max(1, int(math.Round(float64(w)*scale)))
	nh := max(1, int(math.Round(float64(h)*scale)))
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// Millis converts d to milliseconds rounded to the nearest whole value.
// Negative durations clamp to zero.
func Millis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return math.Round(float64(d) / float64(time.Millisecond))
}
