package store

import (
	"context"
	"sync"
)

// MemoryStore keeps entries in process memory. It backs tests and the
// "memory" engine.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]string
	sets    int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.entries[key]
	return value, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.entries[key] = value
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

// Keys returns a snapshot of stored keys.
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	return keys
}

// Writes returns how many Set calls have been made.
func (m *MemoryStore) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sets
}
