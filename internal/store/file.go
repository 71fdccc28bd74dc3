package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"go.klb.dev/sharekit/internal/container"
)

// dataDir is where values live inside a namespace directory, next to the
// files of the shared container.
const dataDir = container.StoreDir

// FileStore keeps each value in its own file under
// <root>/<namespace>/.sharekit/<key>. Writes go to a temporary file first
// and are renamed into place, so readers never see a partial value.
type FileStore struct {
	fs   afero.Fs
	root string
}

// NewFileStore returns a FileStore on fsys rooted at root.
func NewFileStore(fsys afero.Fs, root string) *FileStore {
	return &FileStore{fs: fsys, root: root}
}

func (s *FileStore) path(namespace, key string) (string, error) {
	for _, part := range []string{namespace, key} {
		if part == "" || part != filepath.Base(part) || part == "." || part == ".." {
			return "", fmt.Errorf("store: invalid name %q", part)
		}
	}
	return filepath.Join(s.root, namespace, dataDir, key), nil
}

// Set implements Store.
func (s *FileStore) Set(ctx context.Context, namespace, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(namespace, key)
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	tmp := p + "." + uuid.NewString() + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, value, 0o600); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	if err := s.fs.Rename(tmp, p); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("store: commit %s: %w", key, err)
	}
	return nil
}

// Get implements Store.
func (s *FileStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(namespace, key)
	if err != nil {
		return nil, err
	}
	b, err := afero.ReadFile(s.fs, p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", key, err)
	}
	return b, nil
}
