// Package storage abstracts where audio, reports and clips live. The same
// pipeline runs against the local disk, S3-compatible object stores and
// Tencent COS; the connection string picks the backend.
package storage

import (
	"context"
	"io"
	"path"
	"strings"
)

// FileStore is a minimal interface for file-oriented storage.
//
// Paths are forward-slash separated. Implementations must be safe for
// concurrent use.
type FileStore interface {
	// Read opens the named file for reading. A missing file yields an error
	// wrapping os.ErrNotExist.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write opens the named file for writing, truncating it if present.
	// Parent directories are created as needed. Close flushes the data.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	// Delete removes the named file; deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error

	Exists(ctx context.Context, path string) (bool, error)
}

// Store is a FileStore that can also enumerate its contents and check
// that the backend is reachable.
type Store interface {
	FileStore

	// Walk calls fn for every file under prefix, in lexical order.
	Walk(ctx context.Context, prefix string, fn func(path string) error) error

	// Ping verifies the backend answers.
	Ping(ctx context.Context) error
}

// HasExtension reports whether p ends in one of exts, case-insensitively.
func HasExtension(p string, exts []string) bool {
	ext := strings.ToLower(path.Ext(p))
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// WalkExt is Walk restricted to files with one of exts.
func WalkExt(ctx context.Context, s Store, prefix string, exts []string, fn func(path string) error) error {
	return s.Walk(ctx, prefix, func(p string) error {
		if !HasExtension(p, exts) {
			return nil
		}
		return fn(p)
	})
}

// WriteFile writes data to p in one call.
func WriteFile(ctx context.Context, s FileStore, p string, data []byte) error {
	w, err := s.Write(ctx, p)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// ReadFile reads the whole of p.
func ReadFile(ctx context.Context, s FileStore, p string) ([]byte, error) {
	r, err := s.Read(ctx, p)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
