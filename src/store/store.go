package store

import "sync"

// Persisted session keys. Absence of KeyToken is the sole signal for
// "logged out"; every value is string-encoded.
const (
	KeyToken  = "token"
	KeyUserID = "userId"
	KeyRole   = "role"
	KeyName   = "name"
	KeyEmail  = "email"
)

// TokenStore wraps persisted key/value storage of auth primitives.
// Implementations must make SetAll and Clear atomic: a reader observes
// either the previous snapshot or the new one, never a mix.
type TokenStore interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	SetAll(values map[string]string) error
	Clear() error
	Snapshot() map[string]string

	// Token is a convenience reader for the credential, usable as a
	// transport.TokenSource.
	Token() string
}

// MemoryStore is a process-lifetime TokenStore for tests and ephemeral runs.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) SetAll(values map[string]string) error {
	next := make(map[string]string, len(values))
	for k, v := range values {
		next[k] = v
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = next
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = map[string]string{}
	return nil
}

func (m *MemoryStore) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

func (m *MemoryStore) Token() string {
	v, _ := m.Get(KeyToken)
	return v
}
