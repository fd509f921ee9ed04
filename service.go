package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// FileStorage defines the interface for the flat key/value file store backing the relay.
//
// All methods accept a context for cancellation. Implementations should respect
// context cancellation during long-running copies.
type FileStorage interface {
	// Create stores content under key.
	//
	// Creation must be exclusive: if a file already exists under key the
	// implementation returns ErrConflict and leaves the existing file untouched.
	//
	// Returns:
	//   - int64: number of bytes written, also when the copy failed midway
	//   - error: ErrConflict, or any storage or I/O error
	//
	// A partially written file is left in place when the copy fails.
	Create(ctx context.Context, key string, content io.Reader) (int64, error)

	// Open returns the stored file for key together with its size and modification time.
	// The caller is responsible for closing the returned ReadSeekCloser.
	//
	// Returns ErrNotFound if nothing is stored under key.
	Open(ctx context.Context, key string) (FileInfo, io.ReadSeekCloser, error)

	// List returns all stored files. ContentType is left empty.
	List(ctx context.Context) ([]FileInfo, error)

	// Remove deletes the file stored under key. Returns ErrNotFound if absent.
	Remove(ctx context.Context, key string) error
}

// ServiceConfig holds configuration options for RelayService.
type ServiceConfig struct {
	// Clock returns the current time (default: time.Now).
	Clock func() time.Time
}

// RelayService authorizes uploads and serves stored files.
type RelayService struct {
	storage  FileStorage
	verifier TokenVerifier
	now      func() time.Time
}

// NewRelayService creates a RelayService that stores uploads in storage and checks tokens with verifier.
func NewRelayService(storage FileStorage, verifier TokenVerifier, cfg ServiceConfig) (*RelayService, error) {
	if storage == nil {
		return nil, errors.New("new relay service: storage is required")
	}
	if verifier == nil {
		return nil, errors.New("new relay service: token verifier is required")
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &RelayService{
		storage:  storage,
		verifier: verifier,
		now:      now,
	}, nil
}

// Upload authorizes req and stores content under the storage key of req.Name.
//
// The method performs the following steps:
//  1. Verifies req.Token against req.Name and req.Size
//  2. Exclusively creates the file for StorageKey(req.Name)
//  3. Streams content into it, reading at most req.Size+1 bytes
//  4. Compares the bytes written with req.Size
//
// Error types returned:
//   - ErrUnauthorized: token mismatch; storage is not touched
//   - ErrConflict: a file is already stored for req.Name; it is left unchanged
//   - ErrInsufficientStorage: the file could not be created, the copy failed,
//     or the number of bytes stored differs from req.Size; a partial file stays
//     in storage
//   - context.Canceled or context.DeadlineExceeded before anything was written
func (s *RelayService) Upload(ctx context.Context, req UploadRequest, content io.Reader) (FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return FileInfo{}, fmt.Errorf("upload: %w", err)
	}

	if err := s.verifier.Verify(req.Name, req.Size, req.Token); err != nil {
		return FileInfo{}, fmt.Errorf("upload: %w", err)
	}

	key := StorageKey(req.Name)

	// One extra byte is enough to notice a body longer than declared.
	written, err := s.storage.Create(ctx, key, io.LimitReader(content, req.Size+1))
	if err != nil {
		switch {
		case isCopyError(err):
			return FileInfo{}, fmt.Errorf("upload %s: wrote %d of %d bytes: %w: %w", key, written, req.Size, ErrInsufficientStorage, err)
		case errors.Is(err, ErrConflict), ctx.Err() != nil:
			return FileInfo{}, fmt.Errorf("upload %s: %w", key, err)
		default:
			// A file that cannot be created at all is a failed write, same as a short one.
			return FileInfo{}, fmt.Errorf("upload %s: %w: %w", key, ErrInsufficientStorage, err)
		}
	}

	if written != req.Size {
		return FileInfo{}, fmt.Errorf("upload %s: wrote %d of %d bytes: %w", key, written, req.Size, ErrInsufficientStorage)
	}

	return FileInfo{Key: key, Size: written, ModTime: s.now()}, nil
}

// Download opens the file stored for name and detects its content type from
// the leading bytes. The returned reader is positioned at the start of the file
// and must be closed by the caller.
//
// Returns ErrNotFound if nothing is stored for name.
func (s *RelayService) Download(ctx context.Context, name string) (FileInfo, io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return FileInfo{}, nil, fmt.Errorf("download: %w", err)
	}

	info, f, err := s.storage.Open(ctx, StorageKey(name))
	if err != nil {
		return FileInfo{}, nil, fmt.Errorf("download: %w", err)
	}

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		_ = f.Close()
		return FileInfo{}, nil, fmt.Errorf("download %s: detect content type: %w", info.Key, err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		return FileInfo{}, nil, fmt.Errorf("download %s: rewind: %w", info.Key, err)
	}

	info.ContentType = mtype.String()
	return info, f, nil
}

// Cleanup removes stored files last modified more than maxAge ago.
// Files that disappear while cleaning are skipped.
//
// Returns the number of files removed.
func (s *RelayService) Cleanup(ctx context.Context, maxAge time.Duration) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("cleanup: %w", err)
	}

	if maxAge <= 0 {
		return 0, fmt.Errorf("cleanup: max age must be positive: %w", ErrBadRequest)
	}

	files, err := s.storage.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("cleanup: %w", err)
	}

	cutoff := s.now().Add(-maxAge)
	removed := 0

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return removed, fmt.Errorf("cleanup: %w", err)
		}

		if !file.ModTime.Before(cutoff) {
			continue
		}

		removeErr := s.storage.Remove(ctx, file.Key)
		if removeErr != nil && !errors.Is(removeErr, ErrNotFound) {
			return removed, fmt.Errorf("cleanup '%s': %w", file.Key, removeErr)
		}
		if removeErr == nil {
			removed++
		}
	}

	return removed, nil
}

// CopyError marks a failure that happened while copying content into storage,
// as opposed to a failure to create the destination.
type CopyError struct {
	Err error
}

func (e *CopyError) Error() string {
	return "copy content: " + e.Err.Error()
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

func isCopyError(err error) bool {
	var ce *CopyError
	return errors.As(err, &ce)
}
