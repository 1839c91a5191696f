package store

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/gorilla/securecookie"
)

const fileStoreName = "course-client-session"

// FileStore persists the session values to a single file, encoded with an
// HMAC so a damaged or edited file reads back as a clean logged-out state
// instead of garbage.
type FileStore struct {
	mu     sync.RWMutex
	path   string
	codec  *securecookie.SecureCookie
	values map[string]string
}

// NewFileStore opens (or lazily creates) the session file at path. A file
// that fails decoding is treated as absent.
func NewFileStore(path string, hashKey []byte) (*FileStore, error) {
	if len(hashKey) == 0 {
		return nil, errors.New("session hash key is required")
	}

	fs := &FileStore{
		path:   path,
		codec:  securecookie.New(hashKey, nil),
		values: map[string]string{},
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fs, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var values map[string]string
	if err := fs.codec.Decode(fileStoreName, string(raw), &values); err != nil {
		// Tampered or stale-format file: start logged out
		return fs, nil
	}
	fs.values = values
	return fs, nil
}

func (f *FileStore) Get(key string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.values[key]
	return v, ok
}

func (f *FileStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	return f.flushLocked()
}

func (f *FileStore) SetAll(values map[string]string) error {
	next := make(map[string]string, len(values))
	for k, v := range values {
		next[k] = v
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	prev := f.values
	f.values = next
	if err := f.flushLocked(); err != nil {
		f.values = prev
		return err
	}
	return nil
}

func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = map[string]string{}
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

func (f *FileStore) Snapshot() map[string]string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

func (f *FileStore) Token() string {
	v, _ := f.Get(KeyToken)
	return v
}

func (f *FileStore) flushLocked() error {
	encoded, err := f.codec.Encode(fileStoreName, f.values)
	if err != nil {
		return fmt.Errorf("failed to encode session values: %w", err)
	}
	if err := os.WriteFile(f.path, []byte(encoded), 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}
