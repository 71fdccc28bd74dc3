package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/sharekit/internal/shareerr"
)

type fakeMedia struct {
	dur      time.Duration
	durErr   error
	frame    image.Image
	frameErr error
	askedAt  []time.Duration
}

func (m *fakeMedia) Duration(context.Context, string) (time.Duration, error) {
	return m.dur, m.durErr
}

func (m *fakeMedia) Frame(_ context.Context, _ string, at time.Duration) (image.Image, error) {
	m.askedAt = append(m.askedAt, at)
	return m.frame, m.frameErr
}

type memWriter struct {
	files map[string][]byte
	err   error
}

func (w *memWriter) WriteFile(name string, r io.Reader) (string, error) {
	if w.err != nil {
		return "", w.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if w.files == nil {
		w.files = map[string][]byte{}
	}
	w.files[name] = b
	return "/container/" + name, nil
}

func solid(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	return img
}

func TestDerive(t *testing.T) {
	ctx := t.Context()

	t.Run("Should write a bounded PNG under a fresh name", func(t *testing.T) {
		media := &fakeMedia{dur: 10 * time.Second, frame: solid(1280, 720)}
		out := &memWriter{}
		preview, err := New(media, out, nil).Derive(ctx, "/container/clip.mov")
		require.NoError(t, err)

		assert.Equal(t, ".png", filepath.Ext(preview))
		assert.NotEqual(t, "/container/clip.mov", preview)
		require.Len(t, out.files, 1)

		img, err := png.Decode(bytes.NewReader(out.files[filepath.Base(preview)]))
		require.NoError(t, err)
		assert.Equal(t, 360, img.Bounds().Dx())
		assert.Equal(t, 203, img.Bounds().Dy())
		assert.Equal(t, []time.Duration{SeekOffset}, media.askedAt)
	})

	t.Run("Should give every preview its own name", func(t *testing.T) {
		media := &fakeMedia{dur: 5 * time.Second, frame: solid(10, 10)}
		out := &memWriter{}
		d := New(media, out, nil)
		a, err := d.Derive(ctx, "v")
		require.NoError(t, err)
		b, err := d.Derive(ctx, "v")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("Should seek to the midpoint of short videos", func(t *testing.T) {
		media := &fakeMedia{dur: 400 * time.Millisecond, frame: solid(4, 4)}
		_, err := New(media, &memWriter{}, nil).Derive(ctx, "v")
		require.NoError(t, err)
		assert.Equal(t, []time.Duration{200 * time.Millisecond}, media.askedAt)
	})

	t.Run("Should fail for zero-length media", func(t *testing.T) {
		media := &fakeMedia{frame: solid(4, 4)}
		_, err := New(media, &memWriter{}, nil).Derive(ctx, "v")
		require.ErrorIs(t, err, shareerr.ErrThumbnailFailed)
		assert.Empty(t, media.askedAt)
	})

	t.Run("Should fail when no frame can be extracted", func(t *testing.T) {
		media := &fakeMedia{dur: time.Minute, frameErr: errors.New("moov atom not found")}
		out := &memWriter{}
		_, err := New(media, out, nil).Derive(ctx, "v")
		require.ErrorIs(t, err, shareerr.ErrThumbnailFailed)
		assert.Empty(t, out.files)
	})

	t.Run("Should fail when the preview cannot be written", func(t *testing.T) {
		media := &fakeMedia{dur: time.Minute, frame: solid(4, 4)}
		_, err := New(media, &memWriter{err: errors.New("disk full")}, nil).Derive(ctx, "v")
		require.ErrorIs(t, err, shareerr.ErrThumbnailFailed)
	})
}

func TestDurationMillis(t *testing.T) {
	ctx := t.Context()

	t.Run("Should round to whole milliseconds", func(t *testing.T) {
		media := &fakeMedia{dur: 2500*time.Millisecond + 400*time.Microsecond}
		ms, err := New(media, &memWriter{}, nil).DurationMillis(ctx, "v")
		require.NoError(t, err)
		assert.Equal(t, 2500.0, ms)
	})

	t.Run("Should report probe failures as thumbnail failures", func(t *testing.T) {
		media := &fakeMedia{durErr: errors.New("invalid data")}
		_, err := New(media, &memWriter{}, nil).DurationMillis(ctx, "v")
		require.ErrorIs(t, err, shareerr.ErrThumbnailFailed)
	})
}

func TestFit(t *testing.T) {
	cases := []struct {
		w, h, wantW, wantH int
	}{
		{1920, 1080, 360, 203},
		{1080, 1920, 203, 360},
		{720, 720, 360, 360},
		{100, 50, 100, 50},
		{5000, 1, 360, 1},
	}
	for _, tc := range cases {
		got := Fit(solid(tc.w, tc.h), MaxSide, MaxSide).Bounds()
		assert.Equal(t, tc.wantW, got.Dx(), "%dx%d", tc.w, tc.h)
		assert.Equal(t, tc.wantH, got.Dy(), "%dx%d", tc.w, tc.h)
	}
}

func TestMillis(t *testing.T) {
	assert.Equal(t, 2500.0, Millis(2500400*time.Microsecond))
	assert.Equal(t, 2501.0, Millis(2500600*time.Microsecond))
	assert.Equal(t, 0.0, Millis(-time.Second))
}

func TestParseSeconds(t *testing.T) {
	d, err := parseSeconds("2.500400\n")
	require.NoError(t, err)
	assert.Equal(t, 2500.0, Millis(d))

	for _, bad := range []string{"", "N/A", "abc"} {
		_, err := parseSeconds(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestFFmpegMissingBinary(t *testing.T) {
	f := FFmpeg{FFprobePath: filepath.Join(t.TempDir(), "no-ffprobe")}
	_, err := f.Duration(t.Context(), "clip.mp4")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "no-ffprobe"))
}
