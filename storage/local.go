package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Local implements Store on top of the local filesystem. With an empty root
// paths are used as given, so absolute INPUT_PATH values keep working.
type Local struct {
	root string
}

// NewLocal creates a Local store rooted at dir. A non-empty dir is created
// (with parents) if it does not already exist.
func NewLocal(dir string) (*Local, error) {
	if dir == "" {
		return &Local{}, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &Local{root: abs}, nil
}

// Path resolves a storage path to a filesystem path.
func (l *Local) Path(p string) string {
	return filepath.Join(l.root, filepath.FromSlash(p))
}

func (l *Local) Read(_ context.Context, p string) (io.ReadCloser, error) {
	f, err := os.Open(l.Path(p))
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (l *Local) Write(_ context.Context, p string) (io.WriteCloser, error) {
	full := l.Path(p)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, err
	}
	return os.Create(full)
}

func (l *Local) Delete(_ context.Context, p string) error {
	err := os.Remove(l.Path(p))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (l *Local) Exists(_ context.Context, p string) (bool, error) {
	_, err := os.Stat(l.Path(p))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Walk visits regular files under prefix. Reported paths use the same form
// the caller would pass to Read.
func (l *Local) Walk(ctx context.Context, prefix string, fn func(string) error) error {
	base := l.Path(prefix)
	if base == "" {
		base = "."
	}
	return filepath.WalkDir(base, func(full string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		p := full
		if l.root != "" {
			if p, err = filepath.Rel(l.root, full); err != nil {
				return err
			}
		}
		return fn(filepath.ToSlash(p))
	})
}

func (l *Local) Ping(context.Context) error {
	if l.root == "" {
		return nil
	}
	_, err := os.Stat(l.root)
	return err
}

var _ Store = (*Local)(nil)
