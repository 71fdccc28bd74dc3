package normalize

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/sharekit/internal/container"
	"go.klb.dev/sharekit/internal/item"
	"go.klb.dev/sharekit/internal/loader"
	"go.klb.dev/sharekit/internal/shareerr"
	"go.klb.dev/sharekit/internal/uti"
)

type fakeThumbs struct {
	dir     string
	ms      float64
	err     error
	derived int
}

func (f *fakeThumbs) DurationMillis(context.Context, string) (float64, error) {
	return f.ms, nil
}

func (f *fakeThumbs) Derive(_ context.Context, video string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.derived++
	p := filepath.Join(f.dir, "preview.png")
	return p, os.WriteFile(p, []byte("png"), 0o644)
}

type env struct {
	n     *Normalizer
	dir   *container.Dir
	src   string
	thumb *fakeThumbs
}

func newEnv(t *testing.T) env {
	t.Helper()
	dir, err := container.Open(filepath.Join(t.TempDir(), "group.com.acme.app"))
	require.NoError(t, err)
	thumb := &fakeThumbs{dir: dir.Path(), ms: 2500}
	return env{n: New(dir, thumb, nil), dir: dir, src: t.TempDir(), thumb: thumb}
}

func (e env) source(t *testing.T, name, content string) loader.Value {
	t.Helper()
	p := filepath.Join(e.src, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	u, err := loader.ParseLocation(p)
	require.NoError(t, err)
	return loader.URLValue(uti.FileURL, u)
}

func loadFile(t *testing.T, dir, name, content string) loader.Value {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	u, err := loader.ParseLocation(p)
	require.NoError(t, err)
	return loader.URLValue(uti.FileURL, u)
}

func readLoc(t *testing.T, loc string) string {
	t.Helper()
	p, ok := item.PathOf(loc)
	require.True(t, ok, "not a file location: %s", loc)
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(b)
}

func TestNormalize(t *testing.T) {
	ctx := t.Context()

	t.Run("Should wrap text", func(t *testing.T) {
		e := newEnv(t)
		it, err := e.n.Normalize(ctx, loader.TextValue(uti.Text, "hello"), item.KindText)
		require.NoError(t, err)
		assert.Equal(t, item.Text("hello"), it)
	})

	t.Run("Should pass remote URLs through without copying", func(t *testing.T) {
		e := newEnv(t)
		u, _ := url.Parse("https://example.com/post/1")
		it, err := e.n.Normalize(ctx, loader.URLValue(uti.URL, u), item.KindURL)
		require.NoError(t, err)
		assert.Equal(t, item.URL("https://example.com/post/1"), it)

		entries, err := os.ReadDir(e.dir.Path())
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Should wrap a remote URL resolved for an image as a url item", func(t *testing.T) {
		e := newEnv(t)
		u, _ := url.Parse("https://cdn.example.com/cat.jpg")
		it, err := e.n.Normalize(ctx, loader.URLValue(uti.Image, u), item.KindImage)
		require.NoError(t, err)
		assert.Equal(t, item.KindURL, it.Kind())
	})

	t.Run("Should copy file URLs matched as url into the container", func(t *testing.T) {
		e := newEnv(t)
		it, err := e.n.Normalize(ctx, e.source(t, "link.webloc", "data"), item.KindURL)
		require.NoError(t, err)
		assert.Equal(t, item.KindURL, it.Kind())
		assert.Equal(t, item.FileURL(filepath.Join(e.dir.Path(), "link.webloc")), it.Location())
		assert.Equal(t, "data", readLoc(t, it.Location()))
	})

	for _, kind := range []item.Kind{item.KindFile, item.KindImage} {
		t.Run("Should copy "+string(kind)+" attachments under their own name", func(t *testing.T) {
			e := newEnv(t)
			it, err := e.n.Normalize(ctx, e.source(t, "report.bin", "payload"), kind)
			require.NoError(t, err)
			assert.Equal(t, kind, it.Kind())
			p, ok := item.PathOf(it.Location())
			require.True(t, ok)
			assert.Equal(t, e.dir.Path(), filepath.Dir(p))
			assert.True(t, e.dir.Exists("report.bin"))
			assert.Equal(t, "payload", readLoc(t, it.Location()))
		})
	}

	t.Run("Should overwrite a file left by an earlier handoff", func(t *testing.T) {
		e := newEnv(t)
		first, err := e.n.Normalize(ctx, e.source(t, "a.txt", "one"), item.KindFile)
		require.NoError(t, err)
		next := New(e.dir, e.thumb, nil)
		second, err := next.Normalize(ctx, e.source(t, "a.txt", "two"), item.KindFile)
		require.NoError(t, err)

		assert.Equal(t, first.Location(), second.Location())
		assert.Equal(t, "two", readLoc(t, second.Location()))
		entries, err := os.ReadDir(e.dir.Path())
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("Should keep same-named files of one batch apart", func(t *testing.T) {
		e := newEnv(t)
		dirA, dirB := t.TempDir(), t.TempDir()
		a := loadFile(t, dirA, "IMG.jpg", "A")
		b := loadFile(t, dirB, "IMG.jpg", "B")
		c := loadFile(t, dirA, "IMG", "C")
		d := loadFile(t, dirB, "IMG", "D")

		var locs []string
		for _, v := range []loader.Value{a, b, c, d} {
			it, err := e.n.Normalize(ctx, v, item.KindImage)
			require.NoError(t, err)
			locs = append(locs, it.Location())
		}

		assert.Equal(t, "A", readLoc(t, locs[0]))
		assert.Equal(t, "B", readLoc(t, locs[1]))
		assert.Equal(t, "C", readLoc(t, locs[2]))
		assert.Equal(t, "D", readLoc(t, locs[3]))
		assert.True(t, e.dir.Exists("IMG.jpg"))
		assert.True(t, e.dir.Exists("IMG-2.jpg"))
		assert.True(t, e.dir.Exists("IMG"))
		assert.True(t, e.dir.Exists("IMG-2"))
	})

	t.Run("Should copy videos and attach a distinct preview", func(t *testing.T) {
		e := newEnv(t)
		it, err := e.n.Normalize(ctx, e.source(t, "clip.mov", "mov"), item.KindVideo)
		require.NoError(t, err)
		require.Equal(t, item.KindVideo, it.Kind())

		v := it.Video()
		assert.Equal(t, 2500.0, v.Duration)
		assert.NotEqual(t, v.VideoURL, v.PreviewURL)
		assert.Equal(t, "mov", readLoc(t, v.VideoURL))
		assert.Equal(t, "png", readLoc(t, v.PreviewURL))
		assert.Equal(t, 1, e.thumb.derived)
	})

	t.Run("Should fail the video when the preview cannot be derived", func(t *testing.T) {
		e := newEnv(t)
		e.thumb.err = shareerr.ErrThumbnailFailed
		_, err := e.n.Normalize(ctx, e.source(t, "clip.mov", "mov"), item.KindVideo)
		require.ErrorIs(t, err, shareerr.ErrThumbnailFailed)
	})

	t.Run("Should report a copy failure for a missing source", func(t *testing.T) {
		e := newEnv(t)
		u, err := loader.ParseLocation(filepath.Join(e.src, "gone.png"))
		require.NoError(t, err)
		_, err = e.n.Normalize(ctx, loader.URLValue(uti.Image, u), item.KindImage)
		require.ErrorIs(t, err, shareerr.ErrCopyFailed)
	})

	t.Run("Should report a copy failure when the container refuses", func(t *testing.T) {
		n := New(failingContainer{}, nil, nil)
		e := newEnv(t)
		_, err := n.Normalize(ctx, e.source(t, "x.png", "x"), item.KindImage)
		require.ErrorIs(t, err, shareerr.ErrCopyFailed)
	})
}

func TestNormalizeMismatch(t *testing.T) {
	ctx := t.Context()
	e := newEnv(t)
	u, _ := url.Parse("https://example.com")

	cases := map[string]struct {
		v    loader.Value
		kind item.Kind
	}{
		"location as text": {loader.URLValue(uti.Text, u), item.KindText},
		"text as video":    {loader.TextValue(uti.Movie, "clip"), item.KindVideo},
		"text as image":    {loader.TextValue(uti.Image, "img"), item.KindImage},
		"empty as url":     {loader.Value{Type: uti.URL}, item.KindURL},
		"unknown kind":     {loader.URLValue(uti.URL, u), item.Kind("audio")},
	}
	for name, tc := range cases {
		t.Run("Should reject "+name, func(t *testing.T) {
			_, err := e.n.Normalize(ctx, tc.v, tc.kind)
			require.ErrorIs(t, err, shareerr.ErrTypeMismatch)
		})
	}
}

type failingContainer struct{ container.Container }

func (failingContainer) Copy(string, string) (string, error) {
	return "", errors.New("read-only file system")
}

func TestMismatchMessage(t *testing.T) {
	err := mismatch(loader.TextValue(uti.Movie, "x"), item.KindVideo)
	assert.True(t, strings.Contains(err.Error(), "public.movie"))
}
