// Package filesystem provides the local file system storage backend for relay.
// Files live flat in a single directory under their storage keys. Creation is
// exclusive, so a stored file is never overwritten.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/sagarc03/relay"
)

const filePerm = 0o640

// Store provides file system storage operations.
type Store struct {
	root *os.Root
}

// NewFileStorage creates a new Store with the given root directory.
// The root provides sandboxed file operations preventing path traversal.
func NewFileStorage(root *os.Root) *Store {
	return &Store{root: root}
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Create exclusively creates the file for key and streams content into it.
// Returns relay.ErrConflict if the file already exists. Errors raised after the
// file was created are wrapped in *relay.CopyError and the partial file is kept.
// The operation respects context cancellation.
func (s *Store) Create(ctx context.Context, key string, content io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if err := checkKey(key); err != nil {
		return 0, err
	}

	f, err := s.root.OpenFile(key, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return 0, relay.ErrConflict
		}
		return 0, fmt.Errorf("could not create file: %w", err)
	}

	written, copyErr := io.Copy(f, &ctxReader{ctx: ctx, r: content})
	if copyErr != nil {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("failed to close partial file", "key", key, "err", closeErr)
		}
		return written, &relay.CopyError{Err: copyErr}
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		return written, &relay.CopyError{Err: fmt.Errorf("could not sync written file: %w", err)}
	}

	if err := f.Close(); err != nil {
		return written, &relay.CopyError{Err: fmt.Errorf("could not close written file: %w", err)}
	}

	return written, nil
}

// Open opens the file stored under key for reading. Returns relay.ErrNotFound if
// the file does not exist.
func (s *Store) Open(ctx context.Context, key string) (relay.FileInfo, io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return relay.FileInfo{}, nil, err
	}

	if err := checkKey(key); err != nil {
		return relay.FileInfo{}, nil, err
	}

	f, err := s.root.Open(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return relay.FileInfo{}, nil, relay.ErrNotFound
		}
		return relay.FileInfo{}, nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return relay.FileInfo{}, nil, fmt.Errorf("failed to stat file: %w", err)
	}

	if !info.Mode().IsRegular() {
		_ = f.Close()
		return relay.FileInfo{}, nil, relay.ErrNotFound
	}

	return relay.FileInfo{Key: key, Size: info.Size(), ModTime: info.ModTime()}, f, nil
}

// List returns every stored file in the root directory. Entries whose names are
// not storage keys are ignored.
func (s *Store) List(ctx context.Context) ([]relay.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(s.root.FS(), ".")
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	files := make([]relay.FileInfo, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !entry.Type().IsRegular() || !relay.IsStorageKey(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("list files: %w", err)
		}

		files = append(files, relay.FileInfo{
			Key:     entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	return files, nil
}

// Remove deletes the file stored under key. Returns relay.ErrNotFound if the
// file does not exist.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := checkKey(key); err != nil {
		return err
	}

	err := s.root.Remove(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return relay.ErrNotFound
		}
		return fmt.Errorf("could not delete file: %w", err)
	}
	return nil
}

func checkKey(key string) error {
	if !relay.IsStorageKey(key) {
		return fmt.Errorf("invalid storage key %q: %w", key, relay.ErrBadRequest)
	}
	return nil
}
