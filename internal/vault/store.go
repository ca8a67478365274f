package vault

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"

	verrors "github.com/securevault/securevault/internal/errors"
)

// BlobStore persists packed buffers by id. Implementations must be safe for
// concurrent use.
type BlobStore interface {
	Put(ctx context.Context, id string, packed []byte) error
	Get(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps blobs for the lifetime of the process.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Put(ctx context.Context, id string, packed []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[id] = append([]byte(nil), packed...)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	packed, ok := s.blobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", verrors.ErrBlobNotFound, id)
	}
	return append([]byte(nil), packed...), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, id)
	return nil
}

// Len returns the number of stored blobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

// DiskStore keeps each blob in <root>/blobs/<id>.vault.
type DiskStore struct {
	dir string
}

const blobExtension = ".vault"

// NewDiskStore creates the blob directory under root if needed.
func NewDiskStore(root string) (*DiskStore, error) {
	dir := filepath.Join(root, "blobs")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create blob directory %s: %w", dir, err)
	}
	return &DiskStore{dir: dir}, nil
}

// blobPath only accepts uuids so an id can never escape the blob directory.
func (s *DiskStore) blobPath(id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("invalid blob id %q: %w", id, err)
	}
	return filepath.Join(s.dir, id+blobExtension), nil
}

func (s *DiskStore) Put(ctx context.Context, id string, packed []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.blobPath(id)
	if err != nil {
		return err
	}

	if err := atomic.WriteFile(path, bytes.NewReader(packed)); err != nil {
		return fmt.Errorf("failed to write blob %s: %w", id, err)
	}
	return os.Chmod(path, 0600)
}

func (s *DiskStore) Get(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.blobPath(id)
	if err != nil {
		return nil, err
	}

	packed, err := os.ReadFile(path) // #nosec G304 -- path is built from a validated uuid
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", verrors.ErrBlobNotFound, id)
		}
		return nil, fmt.Errorf("failed to read blob %s: %w", id, err)
	}
	return packed, nil
}

func (s *DiskStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.blobPath(id)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob %s: %w", id, err)
	}
	return nil
}

// Dir returns the blob directory.
func (s *DiskStore) Dir() string {
	return s.dir
}
