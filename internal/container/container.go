// Package container manages the shared file container: a directory scoped to
// the host's group identity that both the extension and the host process can
// read. Files are materialised under their source name, overwriting any
// previous file of the same name, so repeated handoffs stay idempotent.
package container

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	cp "github.com/otiai10/copy"
)

const (
	lockName = ".handoff.lock"
	// StoreDir is where the file store keeps its values inside a container.
	StoreDir = ".sharekit"
)

// Container is the file area shared with the host process.
type Container interface {
	// Path returns the absolute container root.
	Path() string
	// Copy materialises src under name and returns the destination path.
	// An empty name is replaced by a fresh identifier.
	Copy(src, name string) (string, error)
	// WriteFile materialises r under name and returns the destination path.
	WriteFile(name string, r io.Reader) (string, error)
	Remove(name string) error
	Exists(name string) bool
}

// Dir is a Container backed by a local directory.
type Dir struct {
	root string
}

// Open returns the container rooted at root, creating it if needed.
func Open(root string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("container: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("container: %w", err)
	}
	return &Dir{root: abs}, nil
}

func (d *Dir) Path() string { return d.root }

// Locate returns the destination path for name. Directory components are
// dropped so a name can never escape the container.
func (d *Dir) Locate(name string) string {
	return filepath.Join(d.root, entryName(name))
}

// Copy implements Container. src is copied to a temporary entry first and
// renamed over the destination, so a failed copy leaves any previous file in
// place. Copying a file onto itself is a no-op.
func (d *Dir) Copy(src, name string) (string, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("container: source: %w", err)
	}
	dst := d.Locate(name)
	if dstInfo, err := os.Stat(dst); err == nil && os.SameFile(srcInfo, dstInfo) {
		return dst, nil
	}

	tmp := filepath.Join(d.root, "."+uuid.NewString()+".tmp")
	if err := cp.Copy(src, tmp, cp.Options{Sync: true}); err != nil {
		_ = os.RemoveAll(tmp)
		return "", fmt.Errorf("container: copy %s: %w", filepath.Base(src), err)
	}
	if err := d.replace(tmp, dst); err != nil {
		_ = os.RemoveAll(tmp)
		return "", err
	}
	return dst, nil
}

// WriteFile implements Container.
func (d *Dir) WriteFile(name string, r io.Reader) (string, error) {
	dst := d.Locate(name)
	if err := d.clear(dst); err != nil {
		return "", err
	}
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("container: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("container: write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("container: %w", err)
	}
	return dst, nil
}

// Remove implements Container. Removing a missing entry is not an error.
func (d *Dir) Remove(name string) error {
	if err := os.RemoveAll(d.Locate(name)); err != nil {
		return fmt.Errorf("container: %w", err)
	}
	return nil
}

// Exists implements Container.
func (d *Dir) Exists(name string) bool {
	_, err := os.Lstat(d.Locate(name))
	return err == nil
}

// Lock takes the container's advisory handoff lock, enforcing a single
// writer across processes. The returned func releases it.
func (d *Dir) Lock() (func() error, error) {
	fl := flock.New(filepath.Join(d.root, lockName))
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("container: lock: %w", err)
	}
	return fl.Unlock, nil
}

// replace moves tmp to dst. A plain file is replaced atomically; anything
// else at dst is removed first.
func (d *Dir) replace(tmp, dst string) error {
	if fi, err := os.Lstat(dst); err == nil && fi.IsDir() {
		if err := d.clear(dst); err != nil {
			return err
		}
	}
	if err := os.Rename(tmp, dst); err != nil {
		return fmt.Errorf("container: replace %s: %w", filepath.Base(dst), err)
	}
	return nil
}

func (d *Dir) clear(dst string) error {
	if _, err := os.Lstat(dst); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("container: replace %s: %w", filepath.Base(dst), err)
	}
	return nil
}

// entryName reduces name to a single path element. Names the container
// uses for itself get a leading underscore.
func entryName(name string) string {
	base := filepath.Base(filepath.Clean(name))
	switch base {
	case ".", "..", string(filepath.Separator), "":
		return uuid.NewString()
	case lockName, StoreDir:
		return "_" + base
	}
	return base
}
