// Package cache provides the content-addressed result cache for metric
// queries. Entries are keyed by query fingerprint and never expire: a
// fingerprint encodes every input that affects the result, so the payload
// under a given key is immutable.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store is a key to blob store. A Get miss is reported via the boolean,
// not an error.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, data []byte) error
	Close() error
}

// FileStore stores one file per fingerprint under a root directory. Safe to
// share across processes: entries are immutable once written under a key,
// so concurrent writers of the same key produce identical content and
// last-writer-wins is harmless.
type FileStore struct {
	root string
}

// NewFileStore creates a file-backed store rooted at dir. The directory is
// created lazily on first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: dir}
}

// Get reads the blob for key, reporting a miss if the file does not exist.
func (fs *FileStore) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(fs.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return data, true, nil
}

// Put writes the blob for key, creating the root directory if needed.
func (fs *FileStore) Put(key string, data []byte) error {
	if err := os.MkdirAll(fs.root, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(fs.path(key), data, 0644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Close implements Store. File stores hold no resources.
func (fs *FileStore) Close() error {
	return nil
}

func (fs *FileStore) path(key string) string {
	return filepath.Join(fs.root, key+".cache")
}
